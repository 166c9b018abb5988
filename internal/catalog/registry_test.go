package catalog

import "testing"

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	c := reg.Catalog()
	if len(c.Departments) == 0 {
		t.Fatal("catalog has no departments")
	}
	if len(c.Categories) == 0 {
		t.Fatal("catalog has no categories")
	}
	if len(c.Statuses) == 0 {
		t.Fatal("catalog has no statuses")
	}
}

func TestRegistry_Lookups(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	for _, id := range []string{"KTO", "HCH", "NNS", "KDZ", "TKT"} {
		if !reg.HasDepartment(id) {
			t.Errorf("department %s missing", id)
		}
		entry, ok := reg.Department(id)
		if !ok || entry.ID != id {
			t.Errorf("Department(%s) = %+v, %v", id, entry, ok)
		}
	}
	if reg.HasDepartment("XYZ") {
		t.Error("unknown department code accepted")
	}

	for _, id := range []string{"HDLD", "HDDV", "QTTX", "TTRH", "YCMU"} {
		if !reg.HasCategory(id) {
			t.Errorf("category %s missing", id)
		}
	}
	if reg.HasCategory("XYZ") {
		t.Error("unknown category code accepted")
	}

	if _, ok := reg.Category("HDLD"); !ok {
		t.Error("Category(HDLD) not found")
	}
}
