package integrals

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"integrals-api/internal/observability"
	"integrals-api/internal/testutil"

	"go.uber.org/zap"
)

func setupHandler(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing metrics: %v", err)
	}
	return http.HandlerFunc(Calculate)
}

func postCalculate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/calculate", bytes.NewReader([]byte(body)))
	return testutil.ExecuteRequest(req, h)
}

func TestCalculateIndefinite(t *testing.T) {
	h := setupHandler(t)

	w := postCalculate(t, h, `{"function":"x**2","variable":"x"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp CalculationResult
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.IntegralText != "x**3/3" {
		t.Fatalf("expected integral_text %q, got %q", "x**3/3", resp.IntegralText)
	}
	if resp.Integral != `\frac{x^{3}}{3}` {
		t.Fatalf("expected LaTeX integral, got %q", resp.Integral)
	}

	if resp.FunctionPoints == nil || len(resp.FunctionPoints.X) != PlotPoints {
		t.Fatalf("expected %d function points, got %#v", PlotPoints, resp.FunctionPoints)
	}
	if resp.IntegralPoints == nil || len(resp.IntegralPoints.Y) != PlotPoints {
		t.Fatalf("expected %d integral points, got %#v", PlotPoints, resp.IntegralPoints)
	}

	if resp.DefiniteValue != nil {
		t.Fatalf("expected no definite value, got %g", *resp.DefiniteValue)
	}
	if resp.AreaPoints != nil {
		t.Fatal("expected no area points")
	}
}

func TestCalculateDefinite(t *testing.T) {
	h := setupHandler(t)

	w := postCalculate(t, h, `{"function":"2*x + 3","variable":"x","lower_limit":"0","upper_limit":"2"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp CalculationResult
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.DefiniteValue == nil || *resp.DefiniteValue != 10 {
		t.Fatalf("expected definite value 10, got %#v", resp.DefiniteValue)
	}
	if resp.AreaPoints == nil || len(resp.AreaPoints.X) != AreaPoints {
		t.Fatalf("expected %d area points, got %#v", AreaPoints, resp.AreaPoints)
	}
}

func TestCalculateDefaultVariable(t *testing.T) {
	h := setupHandler(t)

	w := postCalculate(t, h, `{"function":"x + 1"}`)

	var resp CalculationResult
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if !resp.Success {
		t.Fatal("expected success with default variable")
	}
	if resp.IntegralText != "x + x**2/2" {
		t.Fatalf("got integral_text %q", resp.IntegralText)
	}
}

// A divergent integral keeps the response successful but drops both the
// definite value and the area series; the symbolic result is still returned.
func TestCalculateDivergentDefiniteOmitsValueAndArea(t *testing.T) {
	h := setupHandler(t)

	w := postCalculate(t, h, `{"function":"1/x","variable":"x","lower_limit":"-1","upper_limit":"1"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp CalculationResult
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.IntegralText == "" {
		t.Fatal("expected symbolic integral to be present")
	}
	if resp.DefiniteValue != nil {
		t.Fatalf("expected no definite value, got %g", *resp.DefiniteValue)
	}
	if resp.AreaPoints != nil {
		t.Fatal("expected no area points for a divergent definite integral")
	}
}

func TestCalculateFailures(t *testing.T) {
	h := setupHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"function":`},
		{name: "parse error", body: `{"function":"x**","variable":"x"}`},
		{name: "empty function", body: `{"function":"","variable":"x"}`},
		{name: "unknown symbol", body: `{"function":"x + y","variable":"x"}`},
		{name: "no antiderivative", body: `{"function":"sin(x**2)","variable":"x"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postCalculate(t, h, tc.body)
			testutil.CheckResponseCode(t, http.StatusOK, w.Code)

			var resp CalculationError
			testutil.DecodeJSONBody(t, w.Body, &resp)

			if resp.Success {
				t.Fatal("expected success false")
			}
			if resp.Error == "" {
				t.Fatal("expected non-empty error message")
			}
		})
	}
}

func TestCalculateIsRepeatable(t *testing.T) {
	h := setupHandler(t)
	body := `{"function":"x**2","variable":"x","lower_limit":0,"upper_limit":3}`

	first := postCalculate(t, h, body).Body.String()
	second := postCalculate(t, h, body).Body.String()

	if first != second {
		t.Fatal("expected identical responses for identical requests")
	}
}

func TestCalculateOnlyUsableBoundsCountAsPair(t *testing.T) {
	h := setupHandler(t)

	// One bound missing: no definite value, no area.
	w := postCalculate(t, h, `{"function":"x","variable":"x","lower_limit":"0"}`)

	var resp CalculationResult
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.DefiniteValue != nil || resp.AreaPoints != nil {
		t.Fatal("expected definite value and area to be absent with a single bound")
	}
}

func TestCalculateContentType(t *testing.T) {
	h := setupHandler(t)

	w := postCalculate(t, h, `{"function":"x","variable":"x"}`)
	if ct := w.Result().Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	if json.Valid(w.Body.Bytes()) == false {
		t.Fatal("expected valid JSON body")
	}
}
