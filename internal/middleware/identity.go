package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// MemberID returns the authenticated member id stored by JWTAuth.  The
// second result is false on routes without JWTAuth, i.e. for guests.
func MemberID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxMemberID).(uint64)
	return id, ok && id != 0
}

// actorKey names the caller in rate limit keys: the member id when
// authenticated, "guest" otherwise.
func actorKey(c echo.Context) string {
	if id, ok := MemberID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
