package api

import (
	"net/http"
	"smartcalendar/auth"
)

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type changeEmailRequest struct {
	NewEmail string `json:"new_email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req auth.Registration
	if !a.decode(w, r, &req) {
		return
	}

	u, err := a.auth.Register(r.Context(), req, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, u)
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.Verify(r.Context(), req.Email, req.OTP, a.now()); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, "email verified")
}

func (a *API) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.ResendVerification(r.Context(), req.Email, a.now()); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusAccepted, "verification email sent if the account exists")
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}

	tokens, err := a.auth.Login(r.Context(), req.Email, req.Password, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, tokens)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !a.decode(w, r, &req) {
		return
	}

	tokens, err := a.auth.Refresh(r.Context(), req.RefreshToken, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, tokens)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}

func (a *API) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.ForgotPassword(r.Context(), req.Email, a.now()); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusAccepted, "password reset email sent if the account exists")
}

func (a *API) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.ResetPassword(r.Context(), req.Token, req.NewPassword, a.now()); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, "password updated")
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, "password updated")
}

func (a *API) changeEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var req changeEmailRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.ChangeEmail(r.Context(), userID, req.NewEmail, req.Password, a.now()); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, "email updated, verification required")
}

func (a *API) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	var req passwordRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.auth.DeleteAccount(r.Context(), userID, req.Password); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}
