package httpx

import (
	"context"
	"errors"
	"net"

	"google.golang.org/api/googleapi"
)

// HTTPStatusCoder is implemented by transport errors that carry a response status.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// Kind buckets an external-call failure for logs. It drives no retry decision.
type Kind string

const (
	KindNone       Kind = ""
	KindQuota      Kind = "quota"
	KindNetwork    Kind = "network"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindInvalid    Kind = "invalid_request"
	KindServer     Kind = "server"
	KindOther      Kind = "other"
)

func KindForStatus(code int) Kind {
	switch {
	case code == 429:
		return KindQuota
	case code == 401 || code == 403:
		return KindPermission
	case code == 404:
		return KindNotFound
	case code == 408:
		return KindNetwork
	case code >= 500 && code <= 599:
		return KindServer
	case code >= 400 && code <= 499:
		return KindInvalid
	default:
		return KindOther
	}
}

func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		// Sheets/Drive report quota exhaustion as 403 with a rate-limit reason.
		for _, item := range gerr.Errors {
			switch item.Reason {
			case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
				return KindQuota
			}
		}
		return KindForStatus(gerr.Code)
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return KindForStatus(sc.HTTPStatusCode())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindOther
}
