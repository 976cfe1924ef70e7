package common

// Environment variables carrying the process-wide secrets.
const (
	EnvAdminSecret  = "NOW_ADMIN_SESSION"
	EnvFamilySecret = "NOW_FAMILY_SESSION"
	EnvFriendSecret = "NOW_FRIEND_SESSION"
)

// RequestIDHeaderName is the HTTP header used to carry the request id.
const RequestIDHeaderName = "X-Request-ID"
