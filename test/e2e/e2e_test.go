//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL  string
	clientID = "e2e-client-1"
	quizID   string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	os.Exit(m.Run())
}

// ─── Helpers ───────────────────────────────────────────────────────────

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func doRequest(t *testing.T, method, path string, body interface{}) (int, *apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", clientID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("parse body %q: %v", raw, err)
	}
	return resp.StatusCode, &parsed
}

// ─── Flow ──────────────────────────────────────────────────────────────

func Test01_ListQuizzes(t *testing.T) {
	status, resp := doRequest(t, http.MethodGet, "/quizzes", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var data struct {
		Quizzes []struct {
			ID            string `json:"id"`
			Title         string `json:"title"`
			RequiresToken bool   `json:"requires_token"`
		} `json:"quizzes"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if len(data.Quizzes) == 0 {
		t.Fatal("catalog is empty; seed the content dir before running e2e")
	}

	// Pick the first open quiz for the rest of the flow.
	for _, q := range data.Quizzes {
		if !q.RequiresToken {
			quizID = q.ID
			break
		}
	}
	if quizID == "" {
		t.Fatal("no open quiz in catalog")
	}
}

func Test02_SelectQuiz(t *testing.T) {
	status, _ := doRequest(t, http.MethodPost, "/quizzes/"+quizID+"/select", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
}

func Test03_OpenExam(t *testing.T) {
	status, resp := doRequest(t, http.MethodPost, "/exam/open", map[string]bool{"fresh": true})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var paper struct {
		Questions []struct {
			Number  int      `json:"number"`
			Options []string `json:"options"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(resp.Data, &paper); err != nil {
		t.Fatalf("parse paper: %v", err)
	}
	if len(paper.Questions) == 0 {
		t.Fatal("paper has no questions")
	}
}

func Test04_AnswerAndNavigate(t *testing.T) {
	status, resp := doRequest(t, http.MethodGet, "/exam/state", nil)
	if status != http.StatusOK {
		t.Fatalf("state: expected 200, got %d", status)
	}

	var state struct {
		Total    int `json:"total"`
		Question struct {
			Options []string `json:"options"`
		} `json:"question"`
	}
	if err := json.Unmarshal(resp.Data, &state); err != nil {
		t.Fatalf("parse state: %v", err)
	}

	status, _ = doRequest(t, http.MethodPost, "/exam/answer", map[string]interface{}{
		"index":  0,
		"option": state.Question.Options[0],
	})
	if status != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d", status)
	}

	if state.Total > 1 {
		status, _ = doRequest(t, http.MethodPost, "/exam/navigate", map[string]int{"index": 1})
		if status != http.StatusOK {
			t.Fatalf("navigate: expected 200, got %d", status)
		}
	}
}

func Test05_VoluntaryFinishBlocked(t *testing.T) {
	status, resp := doRequest(t, http.MethodPost, "/exam/finish", nil)

	// With only one answered question the submission must be rejected,
	// unless the quiz happens to have a single question.
	if status == http.StatusOK {
		t.Skip("single-question quiz, nothing left unanswered")
	}
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != "INCOMPLETE_SUBMISSION" {
		t.Fatalf("expected INCOMPLETE_SUBMISSION, got %+v", resp.Error)
	}
}

func Test06_ForcedFinish(t *testing.T) {
	status, resp := doRequest(t, http.MethodPost, "/exam/finish", map[string]bool{"forced": true})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", status, resp.Error)
	}

	var data struct {
		Result struct {
			Score int `json:"score"`
			Total int `json:"total"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if data.Result.Total == 0 {
		t.Fatal("result has zero total")
	}
	fmt.Printf("finished with score %d\n", data.Result.Score)
}

func Test07_SessionGone(t *testing.T) {
	status, resp := doRequest(t, http.MethodGet, "/exam/state", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after finish, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != "NO_ACTIVE_SESSION" {
		t.Fatalf("expected NO_ACTIVE_SESSION, got %+v", resp.Error)
	}
}
