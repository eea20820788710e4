package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

const staffKey = "httpkit.staff"

// Staff is the authenticated caller taken from the access token.
type Staff struct {
	Login string
	Name  string
	Roles []string
}

// DisplayName falls back to the login when the token carried no name.
func (s Staff) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Login
}

func (s Staff) HasRole(role string) bool { return slices.Contains(s.Roles, role) }

// SetStaff attaches the caller to the request. AuthRequired is the only
// production caller.
func SetStaff(c *gin.Context, s Staff) {
	c.Set(staffKey, s)
}

// CurrentStaff returns the caller, if the request was authenticated.
func CurrentStaff(c *gin.Context) (Staff, bool) {
	s, ok := c.Get(staffKey)
	if !ok {
		return Staff{}, false
	}
	staff, ok := s.(Staff)
	return staff, ok && staff.Login != ""
}

// RequireStaff is CurrentStaff that answers 401 itself when there is no caller.
func RequireStaff(c *gin.Context) (Staff, bool) {
	staff, ok := CurrentStaff(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return staff, ok
}
