package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakePoolStat struct{ acquired, idle, total int32 }

func (s fakePoolStat) AcquiredConns() int32 { return s.acquired }
func (s fakePoolStat) IdleConns() int32     { return s.idle }
func (s fakePoolStat) TotalConns() int32    { return s.total }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakePoolStat{acquired: 2, idle: 1, total: 3})

	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 3 {
		t.Errorf("open conns = %v, want 3", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsAcquired); got != 2 {
		t.Errorf("acquired conns = %v, want 2", got)
	}

	// anything else is ignored
	UpdateDBPoolMetrics("not a pool")
	if got := testutil.ToFloat64(DBPoolConnsIdle); got != 1 {
		t.Errorf("idle conns = %v, want 1", got)
	}
}

func TestObserveEngine(t *testing.T) {
	ObserveEngine("search", time.Now(), 42)
	if n := testutil.CollectAndCount(EngineResultSize, "hazardgrid_engine_result_size"); n == 0 {
		t.Error("expected an engine result size series")
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(Middleware())
	app.Get("/metrics", Handler())
	app.Get("/v1/places/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/places/7", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	want := `hazardgrid_http_requests_total{method="GET",path="/v1/places/:id",status="200"}`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %s", want)
	}
}
