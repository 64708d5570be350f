package crawlers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/RecoveryAshes/ChannelCrawl/internal/crawlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotBase = "https://www.youtube.com/@chan/videos"

func TestSnapshotPage_Extract(t *testing.T) {
	page, err := crawlers.LoadSnapshotPage("testdata/channel.html", snapshotBase)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, page.Navigate(ctx, snapshotBase, 0))
	require.NoError(t, page.WaitSelector(ctx, crawlers.ItemContainerSelector))

	items, err := crawlers.NewExtractor(2).Extract(ctx, page, 10)
	require.NoError(t, err)
	require.Len(t, items, 5)

	first := items[0]
	assert.Equal(t, "https://www.youtube.com/watch?v=AAA111&pp=ygU", first.ItemURL)
	assert.Equal(t, "It’s a \"test\"", first.TitleText)
	assert.Equal(t, "https://i.ytimg.com/vi/AAA111/hqdefault.jpg", first.ThumbnailURL)
	assert.Equal(t, "1,234,567 views", first.MetadataText)

	assert.Equal(t, "Title Only In Text", items[1].TitleText)
	assert.Equal(t, "850 views", items[1].MetadataText)

	assert.Equal(t, "https://www.youtube.com/shorts/CCC333", items[2].ItemURL)
	assert.Empty(t, items[2].ThumbnailURL)
	assert.Empty(t, items[4].MetadataText)
}

func TestSnapshotPage_Bounds(t *testing.T) {
	page, err := crawlers.LoadSnapshotPage("testdata/channel.html", snapshotBase)
	require.NoError(t, err)

	items, err := crawlers.NewExtractor(2).Extract(context.Background(), page, 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSnapshotPage_MissingSelector(t *testing.T) {
	page, err := crawlers.NewSnapshotPage(strings.NewReader("<html><body><p>consent</p></body></html>"), snapshotBase)
	require.NoError(t, err)

	err = page.WaitSelector(context.Background(), crawlers.ItemContainerSelector)
	require.ErrorIs(t, err, crawlers.ErrSelectorMissing)

	els, err := page.Elements(context.Background(), crawlers.ItemContainerSelector)
	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestSnapshotPage_Scroll(t *testing.T) {
	page, err := crawlers.NewSnapshotPage(strings.NewReader("<html></html>"), snapshotBase)
	require.NoError(t, err)
	page.SetHeight(250)

	opts := fastScroll()
	stats := crawlers.NewScrollDriver(opts).ExpandContent(context.Background(), page)
	assert.Equal(t, 3, stats.Steps)
	assert.Equal(t, crawlers.ScrollStopBottom, stats.StopReason)
}

func TestSnapshotLauncher(t *testing.T) {
	page, err := crawlers.LoadSnapshotPage("testdata/channel.html", snapshotBase)
	require.NoError(t, err)

	err = crawlers.WithSession(context.Background(), &crawlers.SnapshotLauncher{Page: page}, crawlers.PageOptions{},
		func(s *crawlers.Session) error {
			return s.Page().WaitSelector(context.Background(), crawlers.ItemContainerSelector)
		})
	require.NoError(t, err)
	assert.True(t, page.Closed())
}

func TestLoadSnapshotPage_MissingFile(t *testing.T) {
	_, err := crawlers.LoadSnapshotPage("testdata/missing.html", snapshotBase)
	assert.Error(t, err)
}
