package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/gwrecon/internal/adapters/cipapi"
	"github.com/okian/gwrecon/internal/adapters/http/api"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDirectory struct {
	byNumber map[string][]cipapi.InterpretationRequest
	err      error
	asked    []string
}

func (m *mockDirectory) InterpretationRequests(_ context.Context, n string) ([]cipapi.InterpretationRequest, error) {
	m.asked = append(m.asked, n)
	if m.err != nil {
		return nil, m.err
	}
	return m.byNumber[n], nil
}

func serve(mux *http.ServeMux, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a stub server over a directory", t, func() {
		dir := &mockDirectory{byNumber: map[string][]cipapi.InterpretationRequest{
			"11585": {{InterpretationRequestID: "11585", Version: "1", CIP: "omicia", Proband: "P001", FamilyID: "203351"}},
		}}
		mux := http.NewServeMux()
		api.NewServer(dir, "").Register(mux)

		Convey("When listing a known request", func() {
			w := serve(mux, http.MethodGet, "/api/2/interpretation-request?interpretation_request_id=11585", "")

			Convey("Then the envelope should carry the match", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var list cipapi.ListResponse
				So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
				So(list.Count, ShouldEqual, 1)
				So(list.Results[0].Proband.String(), ShouldEqual, "P001")
				So(dir.asked, ShouldResemble, []string{"11585"})
			})
		})

		Convey("When listing an unknown request", func() {
			w := serve(mux, http.MethodGet, "/api/2/interpretation-request/?interpretation_request_id=1", "")

			Convey("Then an empty results array should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"results":[]`)
			})
		})

		Convey("When the id is missing or not numeric", func() {
			missing := serve(mux, http.MethodGet, "/api/2/interpretation-request", "")
			alpha := serve(mux, http.MethodGet, "/api/2/interpretation-request?interpretation_request_id=abc", "")

			Convey("Then the request should be rejected", func() {
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
				So(alpha.Code, ShouldEqual, http.StatusBadRequest)
				So(dir.asked, ShouldBeEmpty)
			})
		})

		Convey("When using another method", func() {
			w := serve(mux, http.MethodPost, "/api/2/interpretation-request?interpretation_request_id=11585", "")

			Convey("Then it should not be allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When the directory fails", func() {
			dir.err = errors.New("down")
			w := serve(mux, http.MethodGet, "/api/2/interpretation-request?interpretation_request_id=11585", "")

			Convey("Then a server error should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When checking health", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")

			Convey("Then it should be ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When scraping health as text", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then prometheus metrics should be served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "gwrecon_")
			})
		})
	})

	Convey("Given a stub server requiring a token", t, func() {
		mux := http.NewServeMux()
		api.NewServer(&mockDirectory{}, "secret").Register(mux)

		Convey("Then requests without it should be unauthorized", func() {
			So(serve(mux, http.MethodGet, "/api/2/interpretation-request?interpretation_request_id=1", "").Code, ShouldEqual, http.StatusUnauthorized)
			So(serve(mux, http.MethodGet, "/api/2/interpretation-request?interpretation_request_id=1", "secret").Code, ShouldEqual, http.StatusOK)
		})
	})
}
