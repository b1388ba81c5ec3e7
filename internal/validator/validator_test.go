package validator

import "testing"

func TestValidate_CustomRules(t *testing.T) {
	v := New()

	t.Run("vote type accepts UP and DOWN in any case", func(t *testing.T) {
		for _, typ := range []string{"UP", "DOWN", "up", "down"} {
			if err := v.Validate(CastVoteRequest{Type: typ}); err != nil {
				t.Errorf("Validate(%q) = %v, want nil", typ, err)
			}
		}
	})

	t.Run("vote type rejects anything else", func(t *testing.T) {
		err := v.Validate(CastVoteRequest{Type: "SIDEWAYS"})
		if err == nil {
			t.Fatal("expected a validation error")
		}
		errs, ok := err.(ValidationErrors)
		if !ok || len(errs) != 1 {
			t.Fatalf("expected one validation error, got %v", err)
		}
		if errs[0].Rule != "vote_type" {
			t.Errorf("rule = %q, want vote_type", errs[0].Rule)
		}
	})

	t.Run("profile role must be a known role", func(t *testing.T) {
		good := "mentor"
		if err := v.Validate(UpdateProfileRequest{Role: &good}); err != nil {
			t.Errorf("Validate(role=mentor) = %v, want nil", err)
		}

		bad := "wizard"
		if err := v.Validate(UpdateProfileRequest{Role: &bad}); err == nil {
			t.Error("expected validation error for unknown role")
		}
	})

	t.Run("xp amount bounds", func(t *testing.T) {
		if err := v.Validate(AddXPRequest{Amount: 50}); err != nil {
			t.Errorf("Validate(amount=50) = %v, want nil", err)
		}
		if err := v.Validate(AddXPRequest{Amount: 20000}); err == nil {
			t.Error("expected validation error for out-of-range amount")
		}
	})
}
