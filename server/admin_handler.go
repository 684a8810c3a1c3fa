package server

import (
	"database/sql"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"riseup/logger"
	"riseup/model"
)

// Upload size cap for the multipart form. Audio dominates; 100 MB covers a
// lossless track plus cover art and a short video.
const maxUploadBytes = 100 << 20

// UploadTrackHandler ingests a multipart admin upload: metadata fields plus
// an audio file and optional cover and video files. The binaries are relayed
// to object storage; only the returned URLs land in the track row.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				logger.Warn("Failed to clean up multipart temp files", logger.ErrorField(err))
			}
		}
	}()

	title := strings.TrimSpace(r.FormValue("title"))
	artistName := strings.TrimSpace(r.FormValue("artistName"))
	if title == "" || artistName == "" {
		writeError(w, http.StatusBadRequest, "Title and artist name are required")
		return
	}

	audioURL, err := h.relayFile(r, "audio", "admin-tracks/audio")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload audio file")
		return
	}
	if audioURL == "" {
		writeError(w, http.StatusBadRequest, "Audio file is required")
		return
	}

	coverURL, err := h.relayFile(r, "cover", "admin-tracks/covers")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload cover image")
		return
	}
	videoURL, err := h.relayFile(r, "video", "admin-tracks/videos")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload video file")
		return
	}

	track := &model.Track{
		Title:        title,
		ArtistName:   artistName,
		Album:        nullString(r.FormValue("album")),
		Genre:        nullString(r.FormValue("genre")),
		AudioURL:     audioURL,
		CoverURL:     nullString(coverURL),
		VideoURL:     nullString(videoURL),
		Duration:     parseDuration(r.FormValue("duration")),
		Price:        nullString(r.FormValue("price")),
		IsAdminTrack: true,
	}

	id, err := h.trackRepo.CreateTrack(track)
	if err != nil {
		logger.Error("Failed to create track", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create track")
		return
	}
	track.ID = id

	logger.Info("Admin track uploaded",
		logger.Int64("trackId", id),
		logger.String("title", title),
		logger.String("artist", artistName))

	created, err := h.trackRepo.GetTrackByID(id)
	if err != nil || created == nil {
		created = track
	}
	writeJSON(w, http.StatusCreated, trackResponse(created))
}

// relayFile streams the named form file to object storage and returns its
// URL. An absent file is not an error; it returns "".
func (h *APIHandler) relayFile(r *http.Request, field, folder string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	url, err := h.media.Upload(r.Context(), folder, header.Filename, contentType(header), file, header.Size)
	if err != nil {
		logger.Error("Failed to relay file to storage",
			logger.String("field", field),
			logger.String("filename", header.Filename),
			logger.ErrorField(err))
		return "", err
	}
	return url, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func parseDuration(s string) sql.NullInt64 {
	seconds, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || seconds <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: seconds, Valid: true}
}

// ListAdminTracksHandler returns the admin-uploaded portion of the catalog.
func (h *APIHandler) ListAdminTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.trackRepo.GetAdminTracks()
	if err != nil {
		logger.Error("Failed to list admin tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch tracks")
		return
	}

	out := make([]map[string]interface{}, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteTrackHandler removes a track from the catalog, along with the likes
// pointing at it. Stored media objects are left behind; URLs simply stop
// being referenced.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.trackRepo.GetTrackByID(id)
	if err != nil {
		logger.Error("Failed to get track for delete", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	if err := h.likeRepo.DeleteByTrack(id); err != nil {
		logger.Error("Failed to delete likes for track", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}
	if err := h.trackRepo.DeleteTrack(id); err != nil {
		logger.Error("Failed to delete track", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}

	logger.Info("Track deleted", logger.Int64("trackId", id), logger.String("title", track.Title))
	writeMessage(w, http.StatusOK, "Track deleted successfully")
}
