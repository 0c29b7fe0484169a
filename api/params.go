package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/gin-gonic/gin"
)

// fiscalYearParam reads ?fiscal_year=YYYY, defaulting to the fiscal year the
// current date falls in.
func fiscalYearParam(c *gin.Context) (int, error) {
	raw := c.Query("fiscal_year")
	if raw == "" {
		return engine.FiscalYear(time.Now().UTC()), nil
	}
	fy, err := strconv.Atoi(raw)
	if err != nil || fy < 2000 || fy > 2100 {
		return 0, fmt.Errorf("invalid fiscal_year %q", raw)
	}
	return fy, nil
}

// monthParam reads a ?month=YYYY-MM or YYYY-MM-DD query value as a month
// start.
func monthParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	if t, err := time.Parse("2006-01", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q", name, raw)
	}
	return engine.MonthStart(t), nil
}

// dateParam reads a ?name=YYYY-MM-DD query value.
func dateParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q", name, raw)
	}
	return t, nil
}

func boolQuery(c *gin.Context, name string) bool {
	return c.Query(name) == "true" || c.Query(name) == "1"
}
