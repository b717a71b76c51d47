package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	cases := []struct {
		id    string
		price string
	}{
		{"300ml", "14.00"},
		{"400ml", "16.00"},
		{"500ml", "18.00"},
	}
	for _, tc := range cases {
		s, ok := cat.Size(tc.id)
		if !ok {
			t.Fatalf("size %s missing", tc.id)
		}
		if s.Price.StringFixed(2) != tc.price {
			t.Errorf("size %s price = %s, want %s", tc.id, s.Price.StringFixed(2), tc.price)
		}
	}

	if cat.Rules.IncludedFruits != 2 || cat.Rules.IncludedIceCreams != 1 {
		t.Errorf("included counts = %d fruits / %d ice creams, want 2 / 1",
			cat.Rules.IncludedFruits, cat.Rules.IncludedIceCreams)
	}
	if cat.Rules.ExtraFruitPrice.StringFixed(2) != "1.00" {
		t.Errorf("extra fruit price = %s, want 1.00", cat.Rules.ExtraFruitPrice)
	}
	if cat.Rules.ExtraIceCreamPrice.StringFixed(2) != "2.00" {
		t.Errorf("extra ice cream price = %s, want 2.00", cat.Rules.ExtraIceCreamPrice)
	}
}

func TestDefaultSizeIsCheapest(t *testing.T) {
	cat := Default()
	if got := cat.DefaultSize(); got.ID != "300ml" {
		t.Fatalf("DefaultSize = %s, want 300ml", got.ID)
	}
}

func TestLookups(t *testing.T) {
	cat := Default()

	if _, ok := cat.Fruit("kiwi"); !ok {
		t.Error("fruit kiwi missing")
	}
	if _, ok := cat.Fruit("flocos"); ok {
		t.Error("flocos is not a fruit")
	}
	// morango is both a fruit and an ice cream flavor; the namespaces are
	// independent
	if _, ok := cat.Fruit("morango"); !ok {
		t.Error("fruit morango missing")
	}
	if _, ok := cat.IceCream("morango"); !ok {
		t.Error("ice cream morango missing")
	}
	if _, ok := cat.Topping("granola"); !ok {
		t.Error("topping granola missing")
	}
	if _, ok := cat.Size("600ml"); ok {
		t.Error("600ml should not exist")
	}
}

func TestSyrupGroup(t *testing.T) {
	cat := Default()

	for _, id := range []string{"leite-condensado", "calda-chocolate", "calda-morango"} {
		if !cat.IsSyrup(id) {
			t.Errorf("%s should be a syrup", id)
		}
		if _, ok := cat.Topping(id); !ok {
			t.Errorf("syrup %s must also be a listed topping", id)
		}
	}
	for _, id := range []string{"granola", "pacoca", "amendoim", "morango"} {
		if cat.IsSyrup(id) {
			t.Errorf("%s should not be a syrup", id)
		}
	}
}
