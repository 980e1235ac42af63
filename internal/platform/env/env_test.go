package env

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestString_Default(t *testing.T) {
	got := String("EXPENSE_ENV_STRING_DOES_NOT_EXIST", "fallback")
	if got != "fallback" {
		t.Fatalf("String()=%q, want fallback", got)
	}
}

func TestString_Override(t *testing.T) {
	t.Setenv("EXPENSE_ENV_STRING_KEY", "value")
	got := String("EXPENSE_ENV_STRING_KEY", "fallback")
	if got != "value" {
		t.Fatalf("String()=%q, want value", got)
	}
}

func TestStrings(t *testing.T) {
	cases := []struct {
		name  string
		set   bool
		value string
		want  []string
	}{
		{name: "unset", want: []string{"a", "b"}},
		{name: "list", set: true, value: " x , y ,,z", want: []string{"x", "y", "z"}},
		{name: "empty", set: true, value: "", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key := "EXPENSE_ENV_STRINGS_" + tc.name
			if tc.set {
				t.Setenv(key, tc.value)
			}
			got := Strings(key, []string{"a", "b"})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Strings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDuration_Override(t *testing.T) {
	t.Setenv("EXPENSE_ENV_DURATION_KEY", "250ms")
	got, err := Duration("EXPENSE_ENV_DURATION_KEY", 5*time.Second)
	if err != nil {
		t.Fatalf("Duration() err=%v", err)
	}
	if got != 250*time.Millisecond {
		t.Fatalf("Duration()=%v, want 250ms", got)
	}
}

func TestDuration_Invalid(t *testing.T) {
	t.Setenv("EXPENSE_ENV_DURATION_KEY_INVALID", "not-a-duration")
	if _, err := Duration("EXPENSE_ENV_DURATION_KEY_INVALID", 5*time.Second); err == nil {
		t.Fatalf("Duration() expected error")
	}
}

func TestBool(t *testing.T) {
	got, err := Bool("EXPENSE_ENV_BOOL_DOES_NOT_EXIST", true)
	if err != nil || got != true {
		t.Fatalf("Bool()=%v err=%v, want true", got, err)
	}

	t.Setenv("EXPENSE_ENV_BOOL_KEY", " false ")
	got, err = Bool("EXPENSE_ENV_BOOL_KEY", true)
	if err != nil || got != false {
		t.Fatalf("Bool()=%v err=%v, want false", got, err)
	}

	t.Setenv("EXPENSE_ENV_BOOL_KEY_INVALID", "nope")
	if _, err := Bool("EXPENSE_ENV_BOOL_KEY_INVALID", false); err == nil {
		t.Fatalf("Bool() expected error")
	}
}

func TestInt(t *testing.T) {
	got, err := Int("EXPENSE_ENV_INT_DOES_NOT_EXIST", 42)
	if err != nil || got != 42 {
		t.Fatalf("Int()=%v err=%v, want 42", got, err)
	}

	t.Setenv("EXPENSE_ENV_INT_KEY", "7")
	got, err = Int("EXPENSE_ENV_INT_KEY", 42)
	if err != nil || got != 7 {
		t.Fatalf("Int()=%v err=%v, want 7", got, err)
	}

	t.Setenv("EXPENSE_ENV_INT_KEY_INVALID", "nope")
	if _, err := Int("EXPENSE_ENV_INT_KEY_INVALID", 42); err == nil {
		t.Fatalf("Int() expected error")
	}
}

func TestParseErrorNamesKeyAndIgnoresDefault(t *testing.T) {
	t.Setenv("EXPENSE_ENV_INT_BAD", "12x")
	got, err := Int("EXPENSE_ENV_INT_BAD", 42)
	if err == nil || !strings.Contains(err.Error(), "EXPENSE_ENV_INT_BAD") {
		t.Fatalf("Int() err=%v, want error naming the key", err)
	}
	if got != 0 {
		t.Fatalf("Int()=%d, want zero value on error", got)
	}
}
