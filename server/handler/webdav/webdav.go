package webdav

import (
	"errors"
	"net/http"

	"github.com/xxxsen/cardpub/davclient"
)

type WebdavHandler struct {
	factory davclient.Factory
}

func NewWebdavHandler(f davclient.Factory) *WebdavHandler {
	return &WebdavHandler{factory: f}
}

// errorStatus maps a client error to the status returned to the api caller.
func errorStatus(err error) int {
	if errors.Is(err, davclient.ErrAuthenticationFailed) || errors.Is(err, davclient.ErrAuthChallenge) {
		return http.StatusBadGateway
	}
	var terr *davclient.TransportError
	if errors.As(err, &terr) {
		return http.StatusBadGateway
	}
	switch code := davclient.StatusCode(err); code {
	case http.StatusNotFound, http.StatusConflict, http.StatusForbidden, http.StatusPreconditionFailed:
		return code
	case 0:
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}
