package util

import (
	"github.com/gin-gonic/gin"
)

const (
	AccountIDKey = "x-account-id"
	EmailKey     = "x-account-email"
	StaffKey     = "x-account-staff"
	SuperuserKey = "x-account-superuser"
)

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(AccountIDKey, msg.AccountID)
	c.Set(EmailKey, msg.Email)
	c.Set(StaffKey, msg.IsStaff)
	c.Set(SuperuserKey, msg.IsSuperuser)
}

func GetToken(c *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.AccountID = c.GetUint(AccountIDKey)
	msg.Email = c.GetString(EmailKey)
	msg.IsStaff = c.GetBool(StaffKey)
	msg.IsSuperuser = c.GetBool(SuperuserKey)
	return msg
}
