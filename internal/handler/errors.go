package handler

import "errors"

var (
	errNoToken               = errors.New("there is no token")
	errInvalidJWT            = errors.New("invalid jwt")
	errInvalidUserID         = errors.New("invalid user ID")
	errInvalidNotificationID = errors.New("invalid notification ID")
	errNotAdmin              = errors.New("you are not an admin")
	errAccessDenied          = errors.New("access denied")
)
