package deploy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTarget_Publish(t *testing.T) {
	target := NewStaticTarget("smesites.dev")
	url, err := target.Publish(context.Background(), "anush-s-jams-co", "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, "https://anush-s-jams-co.smesites.dev", url)
}

func TestStaticTarget_DefaultDomain(t *testing.T) {
	target := NewStaticTarget("")
	url, err := target.Publish(context.Background(), "shop", "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.smesites.dev", url)
}

func TestStaticTarget_EmptySlug(t *testing.T) {
	target := NewStaticTarget("smesites.dev")
	_, err := target.Publish(context.Background(), "", "<html></html>")
	require.Error(t, err)
}

func TestStaticTarget_EmptyDocument(t *testing.T) {
	target := NewStaticTarget("smesites.dev")
	_, err := target.Publish(context.Background(), "shop", "")
	require.Error(t, err)
}
