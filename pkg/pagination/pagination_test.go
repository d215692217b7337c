package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c)

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=50&offset=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c)

	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestNew_Clamps(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, DefaultLimit, 0},
		{-3, -5, DefaultLimit, 0},
		{500, 2, MaxLimit, 2},
		{7, 14, 7, 14},
	}
	for _, tt := range tests {
		p := New(tt.limit, tt.offset)
		if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
			t.Errorf("New(%d, %d) = %+v, want {%d %d}", tt.limit, tt.offset, p, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		p      Params
		total  int
		lo, hi int
	}{
		{Params{Limit: 10, Offset: 0}, 25, 0, 10},
		{Params{Limit: 10, Offset: 20}, 25, 20, 25},
		{Params{Limit: 10, Offset: 30}, 25, 25, 25},
		{Params{Limit: 10, Offset: 0}, 0, 0, 0},
	}
	for _, tt := range tests {
		lo, hi := tt.p.Window(tt.total)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("%+v.Window(%d) = [%d, %d), want [%d, %d)", tt.p, tt.total, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestNewResponse(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		total   int
		hasMore bool
	}{
		{"first page with more", Params{Limit: 10, Offset: 0}, 25, true},
		{"last page", Params{Limit: 10, Offset: 20}, 25, false},
		{"exact fit", Params{Limit: 10, Offset: 0}, 10, false},
		{"empty results", Params{Limit: 10, Offset: 0}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewResponse([]string{}, tt.total, tt.p)
			if resp.HasMore != tt.hasMore {
				t.Errorf("expected HasMore %v, got %v", tt.hasMore, resp.HasMore)
			}
			if resp.Total != tt.total || resp.Limit != tt.p.Limit || resp.Offset != tt.p.Offset {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}
