package usercontext

// Session keys written at login.
const (
	KeyUserID = "user_id"
	KeyName   = "user_name"
	KeyEmail  = "user_email"
	KeyRole   = "user_role"

	localsKey = "USER_CONTEXT"
)
