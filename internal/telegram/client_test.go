package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetops/repair-intake/internal/flow"
)

// recordedCall captures one Bot API request for assertions.
type recordedCall struct {
	path string
	body map[string]any
}

func newAPIServer(t *testing.T, respond func(method string) (int, string)) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		calls = append(calls, recordedCall{path: r.URL.Path, body: body})
		status, payload := http.StatusOK, `{"ok":true,"result":{}}`
		if respond != nil {
			status, payload = respond(r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSendPrompt_ReplyKeyboard(t *testing.T) {
	srv, calls := newAPIServer(t, nil)
	c := NewClient("tok123", srv.URL)

	err := c.SendPrompt(context.Background(), 42, flow.Prompt{
		Text:     "Unit type?",
		Keyboard: [][]string{{"Truck", "Trailer"}, {"Back", "Cancel"}},
	})
	if err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(*calls))
	}
	call := (*calls)[0]
	if call.path != "/bottok123/sendMessage" {
		t.Errorf("path = %q", call.path)
	}
	if call.body["text"] != "Unit type?" {
		t.Errorf("text = %v", call.body["text"])
	}
	markup, ok := call.body["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing: %v", call.body)
	}
	rows, ok := markup["keyboard"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("keyboard rows = %v", markup["keyboard"])
	}
	if markup["resize_keyboard"] != true {
		t.Error("resize_keyboard should be set")
	}
}

func TestSendPrompt_InlineButtons(t *testing.T) {
	srv, calls := newAPIServer(t, nil)
	c := NewClient("tok", srv.URL)

	err := c.SendPrompt(context.Background(), 7, flow.Prompt{
		Text: "Save this record?",
		Inline: []flow.Button{
			{Label: "Save", Data: "save"},
			{Label: "Edit", Data: "edit"},
		},
	})
	if err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}

	markup := (*calls)[0].body["reply_markup"].(map[string]any)
	rows := markup["inline_keyboard"].([]any)
	if len(rows) != 1 {
		t.Fatalf("inline rows = %d, want 1", len(rows))
	}
	first := rows[0].([]any)[0].(map[string]any)
	if first["callback_data"] != "save" {
		t.Errorf("callback_data = %v", first["callback_data"])
	}
}

func TestSendPrompt_RemoveKeyboard(t *testing.T) {
	srv, calls := newAPIServer(t, nil)
	c := NewClient("tok", srv.URL)

	if err := c.SendPrompt(context.Background(), 7, flow.Prompt{Text: "Saved ✅", RemoveKeyboard: true}); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	markup := (*calls)[0].body["reply_markup"].(map[string]any)
	if markup["remove_keyboard"] != true {
		t.Errorf("reply_markup = %v", markup)
	}
}

func TestEditMessageAndAnswerCallback(t *testing.T) {
	srv, calls := newAPIServer(t, nil)
	c := NewClient("tok", srv.URL)

	if err := c.EditMessage(context.Background(), 9, 101, "Saved ✅"); err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if err := c.AnswerCallback(context.Background(), "cb-7"); err != nil {
		t.Fatalf("AnswerCallback: %v", err)
	}

	if (*calls)[0].path != "/bottok/editMessageText" {
		t.Errorf("path = %q", (*calls)[0].path)
	}
	if (*calls)[0].body["message_id"] != float64(101) {
		t.Errorf("message_id = %v", (*calls)[0].body["message_id"])
	}
	if (*calls)[1].path != "/bottok/answerCallbackQuery" {
		t.Errorf("path = %q", (*calls)[1].path)
	}
	if (*calls)[1].body["callback_query_id"] != "cb-7" {
		t.Errorf("callback_query_id = %v", (*calls)[1].body["callback_query_id"])
	}
}

func TestCall_APIRejection(t *testing.T) {
	srv, _ := newAPIServer(t, func(string) (int, string) {
		return http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	})
	c := NewClient("tok", srv.URL)

	err := c.SendPrompt(context.Background(), 1, flow.Prompt{Text: "hi"})
	if err == nil {
		t.Fatal("expected error for non-ok envelope")
	}
}

func TestToEvent_Message(t *testing.T) {
	u := Update{
		UpdateID: 555,
		Message: &Message{
			MessageID: 88,
			Chat:      Chat{ID: 42},
			From:      &User{FirstName: "Dana", LastName: "Ops"},
			Text:      "/new@RepairBot extra",
		},
	}
	ev, ok := u.ToEvent()
	if !ok {
		t.Fatal("ToEvent should accept a message update")
	}
	if ev.ChatID != 42 || ev.MessageID != 88 || ev.UpdateID != 555 {
		t.Errorf("ids = %d/%d/%d", ev.ChatID, ev.MessageID, ev.UpdateID)
	}
	if ev.Command != "new" {
		t.Errorf("Command = %q, want %q", ev.Command, "new")
	}
	if ev.SenderName != "Dana Ops" {
		t.Errorf("SenderName = %q", ev.SenderName)
	}
}

func TestToEvent_Callback(t *testing.T) {
	u := Update{
		UpdateID: 600,
		CallbackQuery: &CallbackQuery{
			ID:   "cb-1",
			Data: "save",
			From: &User{Username: "dana"},
			Message: &Message{
				MessageID: 90,
				Chat:      Chat{ID: 42},
			},
		},
	}
	ev, ok := u.ToEvent()
	if !ok {
		t.Fatal("ToEvent should accept a callback update")
	}
	if !ev.IsCallback() || ev.Callback != "save" || ev.CallbackID != "cb-1" {
		t.Errorf("callback fields = %+v", ev)
	}
	if ev.ChatID != 42 || ev.MessageID != 90 {
		t.Errorf("ids = %d/%d", ev.ChatID, ev.MessageID)
	}
	if ev.SenderName != "@dana" {
		t.Errorf("SenderName = %q", ev.SenderName)
	}
}

func TestToEvent_Unsupported(t *testing.T) {
	if _, ok := (&Update{UpdateID: 1}).ToEvent(); ok {
		t.Error("empty update should be rejected")
	}
	u := Update{UpdateID: 2, CallbackQuery: &CallbackQuery{ID: "x", Data: "save"}}
	if _, ok := u.ToEvent(); ok {
		t.Error("callback without message should be rejected")
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/start", "start"},
		{"/cancel now", "cancel"},
		{"/new@RepairBot", "new"},
		{"hello", ""},
		{"/", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseCommand(tc.in); got != tc.want {
			t.Errorf("parseCommand(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
