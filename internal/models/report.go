package models

import (
	"encoding/json"
	"errors"
	"time"
)

// CrawlReport 爬取报告
type CrawlReport struct {
	RunID     string `json:"run_id"`
	TargetURL string `json:"target_url"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	MaxResults int `json:"max_results"`
	RawCount   int `json:"raw_count"`
	Kept       int `json:"kept"`
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`

	// 结果
	Success   bool      `json:"success"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	Output    string    `json:"output,omitempty"`

	// 配置快照
	Config map[string]any `json:"config,omitempty"`
}

// NewCrawlReport 根据一次爬取的结果或错误生成报告
func NewCrawlReport(req CrawlRequest, result *CrawlResult, err error, started time.Time) *CrawlReport {
	end := time.Now()
	r := &CrawlReport{
		TargetURL:  req.TargetURL,
		MaxResults: req.MaxResults,
		StartTime:  started,
		EndTime:    end,
		Duration:   end.Sub(started).Seconds(),
		Success:    err == nil,
	}
	if result != nil {
		r.RunID = result.RunID
		r.RawCount = result.RawCount
		r.Kept = len(result.Videos)
		r.Dropped = result.Dropped
		r.Duplicates = result.Duplicates
	}
	if err != nil {
		r.ErrorKind = KindOf(err)
		r.ErrorMsg = err.Error()
		var ce *CrawlError
		if errors.As(err, &ce) && r.RunID == "" {
			r.RunID = ce.RunID
		}
	}
	return r
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
