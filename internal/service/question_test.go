package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/stackit/internal/apperror"
)

func TestAsk_Validation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", false)
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"empty title", "", "content"},
		{"whitespace title", "   ", "content"},
		{"title too long", strings.Repeat("a", MaxTitleLength+1), "content"},
		{"empty content", "valid title", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.questions.Ask(ctx, user.ID, tt.title, tt.content, "", "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Ask() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAsk_LinksTags(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", false)
	ctx := context.Background()

	question := env.askQuestion(t, user.ID, "tagged question", "go, sqlite , , web")

	tags, err := env.questions.Tags(ctx, question.ID)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	want := []string{"go", "sqlite", "web"}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags, want %d", len(tags), len(want))
	}
	for i, tag := range tags {
		if tag.TagName != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tag.TagName, want[i])
		}
	}
}

func TestAsk_CapsTagCount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", false)

	question := env.askQuestion(t, user.ID, "many tags", "a,b,c,d,e,f,g")

	tags, err := env.questions.Tags(context.Background(), question.ID)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if len(tags) != MaxTagsPerQuestion {
		t.Errorf("got %d tags, want %d", len(tags), MaxTagsPerQuestion)
	}
}

// Editing tags is a set difference, not a wipe-and-recreate: links for
// unchanged names keep their join rows.
func TestEdit_TagDiff(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", false)
	ctx := context.Background()

	question := env.askQuestion(t, user.ID, "to edit", "a,b,c")

	before, err := env.questions.Tags(ctx, question.ID)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	beforeByName := make(map[string]string, len(before))
	for _, tag := range before {
		beforeByName[tag.TagName] = tag.ID
	}

	_, err = env.questions.Edit(ctx, user.ID, question.ID, "to edit", "content", "", "b,c,d")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	after, err := env.questions.Tags(ctx, question.ID)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}

	afterByName := make(map[string]string, len(after))
	for _, tag := range after {
		afterByName[tag.TagName] = tag.ID
	}

	if _, ok := afterByName["a"]; ok {
		t.Error("tag \"a\" should have been unlinked")
	}
	if _, ok := afterByName["d"]; !ok {
		t.Error("tag \"d\" should have been linked")
	}
	for _, name := range []string{"b", "c"} {
		if afterByName[name] != beforeByName[name] {
			t.Errorf("tag %q join row changed: %q -> %q", name, beforeByName[name], afterByName[name])
		}
	}
}

func TestEdit_NonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", false)
	stranger := env.createUser(t, "stranger", false)
	ctx := context.Background()

	question := env.askQuestion(t, owner.ID, "private", "")

	_, err := env.questions.Edit(ctx, stranger.ID, question.ID, "hijacked", "content", "", "")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Edit() error = %v, want ErrForbidden", err)
	}

	// Nothing changed.
	got, err := env.questions.Get(ctx, question.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "private" {
		t.Errorf("Title = %q, edit by non-owner should not apply", got.Title)
	}
}

func TestEdit_AdminAllowed(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", false)
	admin := env.createUser(t, "admin", true)
	ctx := context.Background()

	question := env.askQuestion(t, owner.ID, "original", "")

	got, err := env.questions.Edit(ctx, admin.ID, question.ID, "moderated", "content", "", "")
	if err != nil {
		t.Fatalf("Edit() by admin error = %v", err)
	}
	if got.Title != "moderated" {
		t.Errorf("Title = %q, want %q", got.Title, "moderated")
	}
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", false)
	stranger := env.createUser(t, "stranger", false)
	ctx := context.Background()

	question := env.askQuestion(t, owner.ID, "keep me", "")

	if err := env.questions.Delete(ctx, stranger.ID, question.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() error = %v, want ErrForbidden", err)
	}
	if _, err := env.questions.Get(ctx, question.ID); err != nil {
		t.Errorf("question should survive a forbidden delete: %v", err)
	}
}

func TestDelete_Owner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", false)
	ctx := context.Background()

	question := env.askQuestion(t, owner.ID, "temporary", "")

	if err := env.questions.Delete(ctx, owner.ID, question.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := env.questions.Get(ctx, question.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestView_IncrementsViews(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", false)
	ctx := context.Background()

	question := env.askQuestion(t, user.ID, "popular", "")

	first, err := env.questions.View(ctx, question.ID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	second, err := env.questions.View(ctx, question.ID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if first.Views != 1 || second.Views != 2 {
		t.Errorf("Views = %d then %d, want 1 then 2", first.Views, second.Views)
	}
}
