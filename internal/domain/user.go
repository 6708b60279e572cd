package domain

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

type EmailVerificationStatus string

const (
	EmailVerified    EmailVerificationStatus = "VERIFIED"
	EmailNotVerified EmailVerificationStatus = "NOT_VERIFIED"
)

// User is the slice of the identity service's account record that the
// booking engine needs: role for the capacity policy and the verified
// contact precondition.
type User struct {
	ID                      int64
	Email                   string
	Role                    Role
	EmailVerificationStatus EmailVerificationStatus
	Deleted                 bool
}

func (u User) ContactVerified() bool {
	return u.EmailVerificationStatus == EmailVerified
}
