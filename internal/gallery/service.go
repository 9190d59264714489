package gallery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

// URLPrefix is where the gallery directory is served.
const URLPrefix = "/fotos/"

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// Service lists the public party photos.
type Service struct {
	fsys fs.FS
	logg *logger.Logger
}

// NewService reads photos from dir. A missing directory lists as empty.
func NewService(dir string, logg *logger.Logger) *Service {
	return NewServiceFS(os.DirFS(dir), logg)
}

func NewServiceFS(fsys fs.FS, logg *logger.Logger) *Service {
	return &Service{fsys: fsys, logg: logg}
}

// List returns the public URL of every image file, sorted by name.
func (s *Service) List(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		if s.logg != nil {
			s.logg.Warn(ctx, "gallery directory unreadable: "+err.Error())
		}
		return []string{}, nil
	}

	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := imageExtensions[strings.ToLower(path.Ext(name))]; !ok {
			continue
		}
		urls = append(urls, URLPrefix+name)
	}
	sort.Strings(urls)
	return urls, nil
}
