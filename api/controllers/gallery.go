package controllers

import (
	"context"
	"net/http"

	"github.com/cabanadebrincar/cabana-backend/api/responses"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

type photoLister interface {
	List(ctx context.Context) ([]string, error)
}

// GalleryPhotos lists the public party photo URLs.
func GalleryPhotos(svc photoLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photos)
	}
}
