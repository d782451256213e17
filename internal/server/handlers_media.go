package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

// mediaOpener is implemented by media stores the server hosts itself.
type mediaOpener interface {
	Open(ctx context.Context, key string) (*os.File, error)
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	opener, ok := s.media.(mediaOpener)
	if !ok {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("media is not hosted by this server"), ErrCodeMediaNotFound))
		return
	}

	key := r.PathValue("key")
	f, err := opener.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("media not found"), ErrCodeMediaNotFound))
			return
		}
		if r.Context().Err() != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(err))
			return
		}
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("media not found"), ErrCodeMediaNotFound))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(err))
		return
	}
	if info.IsDir() {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("media not found"), ErrCodeMediaNotFound))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, path.Base(key), info.ModTime(), f)
}
