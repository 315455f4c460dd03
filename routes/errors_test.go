package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripnest-server/booking"

	"github.com/kataras/iris/v12"
)

func TestBookingErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"conflict", booking.ErrConflict, http.StatusConflict},
		{"invalid transition", booking.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"invalid window", booking.ErrInvalidWindow, http.StatusBadRequest},
		{"wrapped conflict", errors.New("wrapped: " + booking.ErrConflict.Error()), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := iris.New()
			app.Get("/boom", func(ctx iris.Context) {
				handleBookingError(tc.err, ctx)
			})
			app.Build()

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			resp := httptest.NewRecorder()
			app.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("got status %d, want %d", resp.Code, tc.want)
			}
		})
	}
}
