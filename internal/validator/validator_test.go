package validator

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tamilprep-backend/internal/model"
)

func TestBind_QuizRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Setup()

	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body uses defaults", "", ""},
		{"valid", `{"question_count":5,"max_chars":4000,"timer_minutes":10}`, ""},
		{"count too high", `{"question_count":50}`, "question_count"},
		{"max chars too low", `{"max_chars":10}`, "max_chars"},
		{"bad json", `{"question_count":`, "detail"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req model.GenerateQuizRequest
			fields := Bind(c, &req)
			if tc.wantErr == "" {
				if fields != nil {
					t.Fatalf("unexpected errors %v", fields)
				}
				return
			}
			if fields[tc.wantErr] == "" {
				t.Fatalf("expected error on %q, got %v", tc.wantErr, fields)
			}
		})
	}
}

func TestBindForm_OCRLanguage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Setup()

	cases := []struct {
		lang string
		ok   bool
	}{
		{"", true},
		{"tam", true},
		{"tam+eng", true},
		{"script/Tamil", true},
		{"ta", false},
		{"tam+", false},
		{"tam;rm -rf", false},
	}

	for _, tc := range cases {
		t.Run(tc.lang, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			_ = mw.WriteField("ocr_language", tc.lang)
			_ = mw.Close()
			c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
			c.Request.Header.Set("Content-Type", mw.FormDataContentType())

			var req model.ProcessDocumentRequest
			fields := BindForm(c, &req)
			if tc.ok && fields != nil {
				t.Fatalf("unexpected errors %v", fields)
			}
			if !tc.ok && fields["ocr_language"] == "" {
				t.Fatalf("expected ocr_language error, got %v", fields)
			}
			if tc.ok && req.OCRLanguage != tc.lang {
				t.Fatalf("bound %q, want %q", req.OCRLanguage, tc.lang)
			}
		})
	}
}
