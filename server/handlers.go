package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"riseup/config"
	"riseup/logger"
	"riseup/model"
	"riseup/repository"
	"riseup/session"
	"riseup/storage"

	"github.com/gorilla/mux"
)

// otpSender is the slice of the mailer the auth handlers use.
type otpSender interface {
	SendOTP(to, otp string) error
}

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo     repository.UserRepository
	trackRepo    repository.TrackRepository
	playlistRepo repository.PlaylistRepository
	likeRepo     repository.LikeRepository
	sessions     session.Store
	media        storage.MediaStore
	mailer       otpSender
	cfg          atomic.Pointer[config.Config]
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	trackRepo repository.TrackRepository,
	playlistRepo repository.PlaylistRepository,
	likeRepo repository.LikeRepository,
	sessions session.Store,
	media storage.MediaStore,
	mailer otpSender,
	cfg *config.Config,
) *APIHandler {
	h := &APIHandler{
		userRepo:     userRepo,
		trackRepo:    trackRepo,
		playlistRepo: playlistRepo,
		likeRepo:     likeRepo,
		sessions:     sessions,
		media:        media,
		mailer:       mailer,
	}
	h.cfg.Store(cfg)
	return h
}

// ReloadConfig swaps in a new configuration. Called by the config watcher so
// the admin allow list and cookie settings follow the .env file.
func (h *APIHandler) ReloadConfig(cfg *config.Config) {
	h.cfg.Store(cfg)
}

func (h *APIHandler) config() *config.Config {
	return h.cfg.Load()
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// writeMessage writes `{"message": ...}`, the convention of the auth and
// playlist endpoints.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError writes `{"error": ...}`, the convention of the track endpoints.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// pathID parses the named numeric path variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// trackResponse shapes a track the way the frontend expects it: flat fields
// plus a creator object carrying the display name.
func trackResponse(t *model.Track) map[string]interface{} {
	resp := map[string]interface{}{
		"id":           strconv.FormatInt(t.ID, 10),
		"title":        t.Title,
		"artistName":   t.ArtistName,
		"audioUrl":     t.AudioURL,
		"plays":        t.Plays,
		"likes":        t.Likes,
		"isAdminTrack": t.IsAdminTrack,
		"createdAt":    t.CreatedAt,
		"creator":      map[string]string{"username": t.ArtistName},
	}
	if t.CreatorID.Valid {
		resp["creatorId"] = strconv.FormatInt(t.CreatorID.Int64, 10)
	}
	if t.Album.Valid {
		resp["album"] = t.Album.String
	}
	if t.Genre.Valid {
		resp["genre"] = t.Genre.String
	}
	if t.CoverURL.Valid {
		resp["coverUrl"] = t.CoverURL.String
	}
	if t.VideoURL.Valid {
		resp["videoUrl"] = t.VideoURL.String
	}
	if t.Duration.Valid {
		resp["duration"] = t.Duration.Int64
	}
	if t.Price.Valid {
		resp["price"] = t.Price.String
	}
	return resp
}

// userResponse shapes a user for API responses, omitting empty optionals.
func userResponse(u *model.User) map[string]interface{} {
	resp := map[string]interface{}{
		"id":               strconv.FormatInt(u.ID, 10),
		"email":            u.Email,
		"username":         u.Username,
		"userType":         u.UserType,
		"monthlyListeners": u.MonthlyListeners,
		"totalEarnings":    u.TotalEarnings,
		"isVerified":       u.IsVerified,
		"createdAt":        u.CreatedAt,
	}
	if u.FirstName.Valid {
		resp["firstName"] = u.FirstName.String
	}
	if u.LastName.Valid {
		resp["lastName"] = u.LastName.String
	}
	if u.ProfilePicture.Valid {
		resp["profilePicture"] = u.ProfilePicture.String
	}
	if u.Bio.Valid {
		resp["bio"] = u.Bio.String
	}
	return resp
}
