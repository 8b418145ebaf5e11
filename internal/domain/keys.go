package domain

type CtxKey string

const (
	KeyUserID        CtxKey = "UserID"
	KeyUserEmail     CtxKey = "Email"
	KeyUserRole      CtxKey = "Role"
	KeyAccountStatus CtxKey = "AccountStatus"
	KeyRequestID     CtxKey = "RequestID"
)
