package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"riseup/core/auth"
	"riseup/logger"
	"riseup/model"
	"riseup/repository"
	"riseup/session"
)

type signupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	UserType  string `json:"userType"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SignupHandler registers a new account and signs it in.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email, username and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if req.UserType != model.UserTypeCreator {
		req.UserType = model.UserTypeFan
	}

	if existing, err := h.userRepo.GetUserByEmail(req.Email); err != nil {
		logger.Error("Failed to check existing email", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	} else if existing != nil {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	if existing, err := h.userRepo.GetUserByUsername(req.Username); err != nil {
		logger.Error("Failed to check existing username", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	} else if existing != nil {
		writeMessage(w, http.StatusBadRequest, "Username already taken")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		UserType:     req.UserType,
		FirstName:    nullString(req.FirstName),
		LastName:     nullString(req.LastName),
	}
	id, err := h.userRepo.CreateUser(user)
	if err != nil {
		if err == repository.ErrDuplicateUser {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		logger.Error("Failed to create user", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	user.ID = id

	if err := h.signIn(w, r, user); err != nil {
		logger.Error("Failed to establish session after signup", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	logger.Info("User signed up",
		logger.Int64("userId", user.ID),
		logger.String("userType", user.UserType))

	created, err := h.userRepo.GetUserByID(user.ID)
	if err != nil || created == nil {
		created = user
	}
	writeJSON(w, http.StatusCreated, userResponse(created))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates by email and password. A missing account and a
// wrong password get the same response so the endpoint cannot be used to
// probe which emails are registered.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.userRepo.GetUserByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		logger.Error("Failed to look up user for login", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.signIn(w, r, user); err != nil {
		logger.Error("Failed to establish session", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Login failed")
		return
	}

	logger.Info("User logged in", logger.Int64("userId", user.ID))
	writeJSON(w, http.StatusOK, userResponse(user))
}

// signIn binds the user identity onto a fresh session. Any session id the
// browser already held (for example one minted by the OTP flow before
// authentication) is retired, so a pre-login id can never become an
// authenticated one. The OTP challenge carries over to the new session.
func (h *APIHandler) signIn(w http.ResponseWriter, r *http.Request, user *model.User) error {
	fresh := &session.Session{
		UserID:   user.ID,
		UserType: user.UserType,
		Email:    user.Email,
		Username: user.Username,
	}
	if old := sessionFromContext(r.Context()); old != nil {
		fresh.OTPEmail = old.OTPEmail
		fresh.OTP = old.OTP
		fresh.OTPIssuedAt = old.OTPIssuedAt
		if err := h.sessions.Destroy(r.Context(), old.ID); err != nil {
			logger.Warn("Failed to retire pre-login session", logger.ErrorField(err))
		}
	}
	if err := h.sessions.Create(r.Context(), fresh); err != nil {
		return err
	}
	h.setSessionCookie(w, fresh.ID)
	return nil
}

// LogoutHandler destroys the session and clears the cookie. Logging out
// without a session still succeeds.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		if err := h.sessions.Destroy(r.Context(), sess.ID); err != nil {
			logger.Warn("Failed to destroy session", logger.ErrorField(err))
		}
	}
	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// CurrentUserHandler returns the signed-in user's profile plus the counters
// the profile page shows.
func (h *APIHandler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	user, err := h.userRepo.GetUserByID(sess.UserID)
	if err != nil {
		logger.Error("Failed to load current user", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if user == nil {
		// The account was deleted out from under the session.
		if err := h.sessions.Destroy(r.Context(), sess.ID); err != nil {
			logger.Warn("Failed to destroy orphaned session", logger.ErrorField(err))
		}
		h.clearSessionCookie(w)
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	resp := userResponse(user)
	resp["memberSince"] = user.CreatedAt
	if likes, err := h.likeRepo.CountByUser(user.ID); err == nil {
		resp["likedSongsCount"] = likes
	} else {
		logger.Warn("Failed to count likes", logger.ErrorField(err))
	}
	if playlists, err := h.playlistRepo.CountByUser(user.ID); err == nil {
		resp["playlistsCount"] = playlists
	} else {
		logger.Warn("Failed to count playlists", logger.ErrorField(err))
	}
	if user.UserType == model.UserTypeCreator {
		if tracks, err := h.trackRepo.GetTracksByCreator(user.ID); err == nil {
			resp["uploadedTracksCount"] = len(tracks)
		} else {
			logger.Warn("Failed to count creator tracks", logger.ErrorField(err))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

// UpdateProfileHandler edits the signed-in user's profile fields.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		req.Username = sess.Username
	}

	err := h.userRepo.UpdateProfile(sess.UserID, req.FirstName, req.LastName, req.Username, req.Bio, req.ProfilePicture)
	if err != nil {
		if err == repository.ErrDuplicateUser {
			writeMessage(w, http.StatusBadRequest, "Username is already taken")
			return
		}
		logger.Error("Failed to update profile", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if req.Username != sess.Username {
		sess.Username = req.Username
		if err := h.sessions.Save(r.Context(), sess); err != nil {
			logger.Warn("Failed to update session username", logger.ErrorField(err))
		}
	}

	user, err := h.userRepo.GetUserByID(sess.UserID)
	if err != nil || user == nil {
		logger.Error("Failed to reload user after profile update", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, userResponse(user))
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

// SendOTPHandler issues a password-reset code to a registered email. The code
// lives in the caller's session, so the reset can only complete from the same
// browser session that requested it.
func (h *APIHandler) SendOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := h.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Error("Failed to look up user for OTP", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusNotFound, "No account found with this email")
		return
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		logger.Error("Failed to generate OTP", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	sess, err := h.ensureSession(w, r)
	if err != nil {
		logger.Error("Failed to create session for OTP", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}
	sess.OTPEmail = email
	sess.OTP = otp
	sess.OTPIssuedAt = time.Now()
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		logger.Error("Failed to store OTP challenge", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	if err := h.mailer.SendOTP(email, otp); err != nil {
		logger.Error("Failed to send OTP email", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	writeMessage(w, http.StatusOK, "OTP sent to your email")
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTPHandler checks a submitted code against the session's challenge.
// Verification does not consume the code; reset-password re-checks it.
func (h *APIHandler) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sess := sessionFromContext(r.Context())
	if !h.otpMatches(sess, req.Email, req.OTP) {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	writeMessage(w, http.StatusOK, "OTP verified successfully")
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPasswordHandler replaces the account password after re-validating the
// OTP, then clears the challenge so the code cannot be replayed for a second
// reset.
func (h *APIHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "New password is required")
		return
	}

	sess := sessionFromContext(r.Context())
	if !h.otpMatches(sess, req.Email, req.OTP) {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("Failed to hash new password", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	email := sess.OTPEmail
	if err := h.userRepo.UpdatePassword(email, hash); err != nil {
		logger.Error("Failed to update password", logger.ErrorField(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	sess.ClearOTP()
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		logger.Warn("Failed to clear OTP challenge", logger.ErrorField(err))
	}

	logger.Info("Password reset", logger.String("email", email))
	writeMessage(w, http.StatusOK, "Password reset successfully")
}

// otpMatches validates a submitted email/code pair against the session's OTP
// challenge, including its expiry window.
func (h *APIHandler) otpMatches(sess *session.Session, email, otp string) bool {
	if sess == nil || sess.OTP == "" {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(email), sess.OTPEmail) || otp != sess.OTP {
		return false
	}
	return time.Since(sess.OTPIssuedAt) <= h.config().OTPTTL
}

func nullString(s string) sql.NullString {
	if s = strings.TrimSpace(s); s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
