package dto

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordOTPRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type VerifyChangeOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type ProfileUpdateRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

type CleanupResponse struct {
	Message             string `json:"message"`
	DeletedCodes        int64  `json:"deleted_codes"`
	DeletedResetTokens  int64  `json:"deleted_reset_tokens"`
	DeletedSessions     int64  `json:"deleted_sessions"`
	DeletedRateCounters int64  `json:"deleted_rate_counters"`
}
