package server

import (
	"net/http"

	"riseup/logger"
)

// ListTracksHandler returns the whole catalog, newest first. Public.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.trackRepo.GetAllTracks()
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch tracks")
		return
	}

	out := make([]map[string]interface{}, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// SearchTracksHandler filters the catalog by a free-text query (?q=) and an
// optional genre (?genre=). Both absent returns everything.
func (h *APIHandler) SearchTracksHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	genre := r.URL.Query().Get("genre")

	tracks, err := h.trackRepo.SearchTracks(query, genre)
	if err != nil {
		logger.Error("Failed to search tracks",
			logger.String("query", query),
			logger.String("genre", genre),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to search tracks")
		return
	}

	out := make([]map[string]interface{}, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTrackHandler returns a single track by id. Public.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.trackRepo.GetTrackByID(id)
	if err != nil {
		logger.Error("Failed to get track", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}
	writeJSON(w, http.StatusOK, trackResponse(track))
}

// IncrementPlaysHandler bumps the play counter. Called by the client when
// playback of a track starts.
func (h *APIHandler) IncrementPlaysHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.trackRepo.GetTrackByID(id)
	if err != nil {
		logger.Error("Failed to get track for play count", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to record play")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	if err := h.trackRepo.IncrementPlays(id); err != nil {
		logger.Error("Failed to increment plays", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to record play")
		return
	}
	writeMessage(w, http.StatusOK, "Play recorded")
}

// ToggleLikeHandler flips the signed-in user's like on a track and keeps the
// denormalized counter on the track row in step.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.trackRepo.GetTrackByID(id)
	if err != nil {
		logger.Error("Failed to get track for like", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	liked, err := h.likeRepo.ToggleLike(sess.UserID, id)
	if err != nil {
		logger.Error("Failed to toggle like",
			logger.Int64("userId", sess.UserID),
			logger.Int64("trackId", id),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}

	delta := int64(1)
	if !liked {
		delta = -1
	}
	if err := h.trackRepo.AdjustLikes(id, delta); err != nil {
		logger.Warn("Failed to adjust like counter", logger.Int64("trackId", id), logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"liked": liked})
}

// LikeStatusHandler reports whether the signed-in user has liked a track.
func (h *APIHandler) LikeStatusHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	liked, err := h.likeRepo.IsLiked(sess.UserID, id)
	if err != nil {
		logger.Error("Failed to check like status", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to check like status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"liked": liked})
}

// LikedSongsHandler lists the signed-in user's liked tracks, newest like
// first. Likes pointing at since-deleted tracks are skipped.
func (h *APIHandler) LikedSongsHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	likes, err := h.likeRepo.ListByUser(sess.UserID)
	if err != nil {
		logger.Error("Failed to list likes", logger.Int64("userId", sess.UserID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch liked songs")
		return
	}

	out := make([]map[string]interface{}, 0, len(likes))
	for _, like := range likes {
		track, err := h.trackRepo.GetTrackByID(like.TrackID)
		if err != nil {
			logger.Warn("Failed to resolve liked track", logger.Int64("trackId", like.TrackID), logger.ErrorField(err))
			continue
		}
		if track == nil {
			continue
		}
		entry := trackResponse(track)
		entry["likedAt"] = like.CreatedAt
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

// trackGenres is the fixed genre list the upload form and search filter share.
var trackGenres = []string{
	"Pop", "Rock", "Hip Hop", "R&B", "Electronic", "Jazz",
	"Classical", "Country", "Folk", "Reggae", "Blues", "Metal",
	"Indie", "Lo-Fi", "Ambient", "Other",
}

// GenresHandler returns the selectable genre list.
func (h *APIHandler) GenresHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"genres": trackGenres})
}
