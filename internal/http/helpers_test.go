package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookpedia/internal/result"
)

func TestDataErrorStatus(t *testing.T) {
	tests := []struct {
		err  result.DataError
		want int
	}{
		{result.ErrRequestTimeout, http.StatusGatewayTimeout},
		{result.ErrTooManyRequests, http.StatusTooManyRequests},
		{result.ErrNoInternet, http.StatusServiceUnavailable},
		{result.ErrSerialization, http.StatusBadGateway},
		{result.ErrRemoteUnknown, http.StatusBadGateway},
		{result.ErrDiskFull, http.StatusInsufficientStorage},
		{result.ErrLocalUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, dataErrorStatus(tt.err))
		})
	}
}
