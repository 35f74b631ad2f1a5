package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"hospital", func() *BaseModel {
			h := &Hospital{}
			return &h.BaseModel
		}},
		{"role", func() *BaseModel {
			r := &Role{}
			return &r.BaseModel
		}},
		{"user_role_assignment", func() *BaseModel {
			a := &UserRoleAssignment{}
			return &a.BaseModel
		}},
		{"permission", func() *BaseModel {
			p := &Permission{}
			return &p.BaseModel
		}},
		{"role_permission_entry", func() *BaseModel {
			e := &RolePermissionEntry{}
			return &e.BaseModel
		}},
		{"user_permission_override", func() *BaseModel {
			o := &UserPermissionOverride{}
			return &o.BaseModel
		}},
		{"asset", func() *BaseModel {
			a := &Asset{}
			return &a.BaseModel
		}},
		{"work_order", func() *BaseModel {
			w := &WorkOrder{}
			return &w.BaseModel
		}},
		{"notification", func() *BaseModel {
			n := &Notification{}
			return &n.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			if err := model.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if model.ID == "" {
				t.Fatal("expected ID to be generated")
			}
		})
	}
}
