package canonical

import "testing"

func TestNormalizeExtractsQuantity(t *testing.T) {
	cases := []struct {
		raw   string
		text  string
		value float64
		unit  string
	}{
		{"LEITE ITALAC 1L", "leite italac", 1, "l"},
		{"leite italac 200 ml", "leite italac", 200, "ml"},
		{"Açúcar União 1,5 kg", "acucar uniao", 1.5, "kg"},
		{"ARROZ TIO JOÃO 5KG", "arroz tio joao", 5, "kg"},
		{"PÃO FRANCÊS", "pao frances", 0, ""},
		{"REFRIG COCA-COLA 2 LITROS", "refrig coca cola", 2, "l"},
		{"QUEIJO 500 GRAMAS", "queijo", 500, "g"},
	}

	for _, c := range cases {
		got := Normalize(c.raw)
		if got.Text != c.text {
			t.Errorf("Normalize(%q).Text = %q, want %q", c.raw, got.Text, c.text)
		}
		if got.QuantityValue != c.value {
			t.Errorf("Normalize(%q).QuantityValue = %v, want %v", c.raw, got.QuantityValue, c.value)
		}
		if got.QuantityUnit != c.unit {
			t.Errorf("Normalize(%q).QuantityUnit = %q, want %q", c.raw, got.QuantityUnit, c.unit)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"LEITE ITALAC 1L",
		"OVOS BRANCOS C/30",
		"café pilão torrado 500g",
		"banana prata",
	}

	for _, raw := range inputs {
		first := Normalize(raw)
		second := Normalize(first.Text)

		if second.Text != first.Text {
			t.Errorf("not idempotent: Normalize(%q).Text = %q, then %q", raw, first.Text, second.Text)
		}
		if second.QuantityUnit != "" || second.QuantityValue != 0 {
			t.Errorf("canonical text %q still yields a quantity: %v%s",
				first.Text, second.QuantityValue, second.QuantityUnit)
		}
	}
}

func TestNormalizeStripsDiacritics(t *testing.T) {
	got := Normalize("FEIJÃO CARIOCA CAMIL")
	if got.Text != "feijao carioca camil" {
		t.Fatalf("got %q", got.Text)
	}
}

func TestDetectRepackEggs(t *testing.T) {
	cases := []struct {
		desc      string
		category  string
		total     float64
		wantMulti bool
		wantPrice float64
		wantCount int
	}{
		{"OVOS C/30", "ovos", 15.00, true, 0.50, 30},
		{"OVOS C/6", "ovos", 6.00, true, 1.00, 6},
		{"OVOS BRANCOS BANDEJA C/20", "ovos", 10.00, true, 0.50, 20},
		{"OVO CAIPIRA 12 UNIDADES", "ovos", 12.00, true, 1.00, 12},
		{"OVOS DUZIA", "ovos", 9.00, true, 0.75, 12},
		// count outside the sane range
		{"OVOS C/200", "ovos", 50.00, false, 50.00, 0},
		{"OVOS C/2", "ovos", 4.00, false, 4.00, 0},
		// same pattern, not an egg product
		{"AGUA MINERAL C/12", "bebidas", 24.00, false, 24.00, 0},
		{"CERVEJA LATA 12 UN", "bebidas", 36.00, false, 36.00, 0},
		// egg keyword without category hint still fires
		{"OVOS VERMELHOS C/10", "", 8.00, true, 0.80, 10},
	}

	for _, c := range cases {
		got := DetectRepack(c.desc, c.category, c.total, 6, 100)
		if got.IsMultiUnit != c.wantMulti {
			t.Errorf("DetectRepack(%q).IsMultiUnit = %v, want %v", c.desc, got.IsMultiUnit, c.wantMulti)
			continue
		}
		if got.UnitPrice != c.wantPrice {
			t.Errorf("DetectRepack(%q).UnitPrice = %v, want %v", c.desc, got.UnitPrice, c.wantPrice)
		}
		if got.PackCount != c.wantCount {
			t.Errorf("DetectRepack(%q).PackCount = %v, want %v", c.desc, got.PackCount, c.wantCount)
		}
	}
}
