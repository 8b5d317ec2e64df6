package rbac

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"viewer", RoleViewer, false},
		{"", "", true},
		{"Admin", "", true},
		{"superuser", "", true},
	}
	for _, tc := range tests {
		got, err := ParseRole(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q): expected error, got %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCapabilities(t *testing.T) {
	if !CanManageSettings(RoleAdmin) || CanManageSettings(RoleViewer) {
		t.Error("settings management must be admin-only")
	}
	if !CanModerateFeedback(RoleAdmin) || CanModerateFeedback(RoleViewer) {
		t.Error("feedback moderation must be admin-only")
	}
	if !CanManageModels(RoleAdmin) || CanManageModels(RoleViewer) {
		t.Error("model management must be admin-only")
	}
}
