package cbr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dan9191/loan-appraisal/internal/config"
	"github.com/sirupsen/logrus"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgr:diffgram xmlns:diffgr="urn:schemas-microsoft-com:xml-diffgram-v1">
          <KeyRate xmlns="">
            <KR><DT>2024-09-16T00:00:00+03:00</DT><Rate>19.00</Rate></KR>
            <KR><DT>2024-10-28T00:00:00+03:00</DT><Rate>21.00</Rate></KR>
            <KR><DT>2024-10-01T00:00:00+03:00</DT><Rate>19.00</Rate></KR>
          </KeyRate>
        </diffgr:diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func newTestClient(url string) *CBRClient {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewCBRClient(&config.Config{CBRURL: url, BankMargin: 5}, log)
}

func TestGetKeyRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "soap+xml") {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<KeyRate") {
			t.Errorf("request body is not a KeyRate call: %s", body)
		}
		w.Write([]byte(keyRateResponse))
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).GetKeyRate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 26 {
		t.Errorf("expected latest rate 21 + 5 margin, got %.2f", rate)
	}
}

func TestGetKeyRate_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GetKeyRate(context.Background()); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestParseXMLResponse_Errors(t *testing.T) {
	cases := map[string]string{
		"not xml":  "<<<",
		"no rates": `<root><diffgram><KeyRate></KeyRate></diffgram></root>`,
		"no rate":  `<root><diffgram><KeyRate><KR><DT>2024-10-28T00:00:00+03:00</DT></KR></KeyRate></diffgram></root>`,
		"bad rate": `<root><diffgram><KeyRate><KR><Rate>abc</Rate></KR></KeyRate></diffgram></root>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseXMLResponse([]byte(body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
