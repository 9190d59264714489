package gallery

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiltersImages(t *testing.T) {
	fsys := fstest.MapFS{
		"festa1.jpg":        {Data: []byte("x")},
		"festa2.JPEG":       {Data: []byte("x")},
		"cabana.png":        {Data: []byte("x")},
		"tenda.webp":        {Data: []byte("x")},
		"notas.txt":         {Data: []byte("x")},
		"video.mp4":         {Data: []byte("x")},
		"sub/escondida.png": {Data: []byte("x")},
	}

	urls, err := NewServiceFS(fsys, nil).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/fotos/cabana.png",
		"/fotos/festa1.jpg",
		"/fotos/festa2.JPEG",
		"/fotos/tenda.webp",
	}, urls)
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	urls, err := NewService(t.TempDir()+"/missing", nil).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, urls)
	assert.NotNil(t, urls)
}
