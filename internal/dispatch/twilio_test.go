package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbourn/go-sos-backend/internal/config"
	"github.com/tbourn/go-sos-backend/internal/domain"
)

func newFakeProvider(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *TwilioSender) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewTwilioSender(config.ProviderConfig{
		AccountSID: "AC_test",
		AuthToken:  "secret",
		BaseURL:    srv.URL,
	})
	return srv, s
}

func TestTwilioSender_Accepted(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	_, s := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM_ok"}`))
	})

	res := s.Send(context.Background(), Request{
		Channel: domain.ChannelSMS,
		From:    "+15550009999",
		To:      "+15550001111",
		Body:    "ALERT: Ana needs help.",
	})
	if !res.OK || res.ProviderRef != "SM_ok" {
		t.Fatalf("result = %+v", res)
	}
	if gotPath != "/2010-04-01/Accounts/AC_test/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "AC_test" || gotPass != "secret" {
		t.Errorf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotTo != "+15550001111" || gotFrom != "+15550009999" {
		t.Errorf("to/from = %q/%q", gotTo, gotFrom)
	}
	if gotBody != "ALERT: Ana needs help." {
		t.Errorf("body = %q", gotBody)
	}
}

func TestTwilioSender_WhatsAppPrefix(t *testing.T) {
	var gotTo, gotFrom string
	_, s := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM_wa"}`))
	})

	// From already carries the prefix; it must not be doubled.
	res := s.Send(context.Background(), Request{
		Channel: domain.ChannelWhatsApp,
		From:    "whatsapp:+15550009999",
		To:      "+15550001111",
		Body:    "hi",
	})
	if !res.OK {
		t.Fatalf("result = %+v", res)
	}
	if gotTo != "whatsapp:+15550001111" {
		t.Errorf("to = %q", gotTo)
	}
	if gotFrom != "whatsapp:+15550009999" {
		t.Errorf("from = %q", gotFrom)
	}
}

func TestTwilioSender_ProviderError(t *testing.T) {
	_, s := newFakeProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The 'To' number is not a valid phone number."}`))
	})

	res := s.Send(context.Background(), Request{
		Channel: domain.ChannelSMS,
		To:      "bogus",
		Body:    "hi",
	})
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Err != "The 'To' number is not a valid phone number." {
		t.Fatalf("err = %q", res.Err)
	}
}

func TestTwilioSender_OpaqueErrorBody(t *testing.T) {
	_, s := newFakeProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream blew up"))
	})

	res := s.Send(context.Background(), Request{Channel: domain.ChannelSMS, To: "+1", Body: "hi"})
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Err != "provider returned status 503" {
		t.Fatalf("err = %q", res.Err)
	}
}

func TestWhatsAppAddr(t *testing.T) {
	if got := whatsAppAddr("+1555"); got != "whatsapp:+1555" {
		t.Errorf("got %q", got)
	}
	if got := whatsAppAddr("whatsapp:+1555"); got != "whatsapp:+1555" {
		t.Errorf("got %q", got)
	}
}
