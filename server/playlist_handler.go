package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"riseup/logger"
	"riseup/model"
	"riseup/repository"
)

// ListPlaylistsHandler returns the signed-in user's playlists with their
// track ids in play order.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	playlists, err := h.playlistRepo.GetPlaylistsByUser(sess.UserID)
	if err != nil {
		logger.Error("Failed to list playlists", logger.Int64("userId", sess.UserID), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns one of the user's playlists by id.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(id, sess.UserID)
	if err != nil {
		if err == repository.ErrPlaylistNotFound {
			writeMessage(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("Failed to get playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// CreatePlaylistHandler creates an empty playlist owned by the signed-in user.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	playlist := &model.Playlist{
		UserID:      sess.UserID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		IsPublic:    req.IsPublic,
	}
	if err := h.playlistRepo.CreatePlaylist(playlist); err != nil {
		logger.Error("Failed to create playlist", logger.Int64("userId", sess.UserID), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}

	logger.Info("Playlist created",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("userId", sess.UserID))
	writeJSON(w, http.StatusCreated, model.PlaylistWithTracks{Playlist: *playlist, TrackIDs: []int64{}})
}

type playlistTrackRequest struct {
	TrackID int64 `json:"trackId,string"`
}

// AddPlaylistTrackHandler appends a track to one of the user's playlists.
// A track already present is rejected, not moved.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	var req playlistTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TrackID <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	// Ownership check before touching the membership table.
	if _, err := h.playlistRepo.GetPlaylistByID(id, sess.UserID); err != nil {
		if err == repository.ErrPlaylistNotFound {
			writeMessage(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("Failed to get playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to add track to playlist")
		return
	}

	track, err := h.trackRepo.GetTrackByID(req.TrackID)
	if err != nil {
		logger.Error("Failed to get track for playlist add", logger.Int64("trackId", req.TrackID), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to add track to playlist")
		return
	}
	if track == nil {
		writeMessage(w, http.StatusNotFound, "Track not found")
		return
	}

	if err := h.playlistRepo.AddTrackToPlaylist(id, req.TrackID); err != nil {
		if err == repository.ErrTrackAlreadyInPlaylist {
			writeMessage(w, http.StatusBadRequest, "Track is already in this playlist")
			return
		}
		logger.Error("Failed to add track to playlist",
			logger.Int64("playlistId", id),
			logger.Int64("trackId", req.TrackID),
			logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to add track to playlist")
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(id, sess.UserID)
	if err != nil {
		logger.Error("Failed to reload playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to add track to playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// RemovePlaylistTrackHandler removes a track from one of the user's playlists.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}
	trackID, ok := pathID(r, "trackId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if _, err := h.playlistRepo.GetPlaylistByID(id, sess.UserID); err != nil {
		if err == repository.ErrPlaylistNotFound {
			writeMessage(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("Failed to get playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to remove track from playlist")
		return
	}

	if err := h.playlistRepo.RemoveTrackFromPlaylist(id, trackID); err != nil {
		if err == repository.ErrPlaylistNotFound {
			writeMessage(w, http.StatusNotFound, "Track not in playlist")
			return
		}
		logger.Error("Failed to remove track from playlist",
			logger.Int64("playlistId", id),
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to remove track from playlist")
		return
	}

	writeMessage(w, http.StatusOK, "Track removed from playlist")
}

// DeletePlaylistHandler deletes one of the user's playlists along with its
// membership rows. Tracks themselves are untouched.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	if err := h.playlistRepo.DeletePlaylist(id, sess.UserID); err != nil {
		if err == repository.ErrPlaylistNotFound {
			writeMessage(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("Failed to delete playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to delete playlist")
		return
	}

	logger.Info("Playlist deleted",
		logger.Int64("playlistId", id),
		logger.Int64("userId", sess.UserID))
	writeMessage(w, http.StatusOK, "Playlist deleted successfully")
}
