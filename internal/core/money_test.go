package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"60", 6000, true},
		{".5", 50, true},
		{"0", 0, false},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseDecimalToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseDecimalToCents(%q) expected error", tc.in)
		}
	}
}

func TestFormatINR(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{6000, "₹60"},
		{-6000, "₹60"}, // magnitude only; sign is rendered by the caller
		{30293, "₹302.93"},
		{12074414, "₹1,20,744.14"},
		{100000000, "₹10,00,000"},
		{123456789900, "₹1,23,45,67,899"},
		{0, "₹0"},
	}
	for _, tc := range cases {
		if got := FormatINR(Money{Cents: tc.cents}); got != tc.want {
			t.Fatalf("FormatINR(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	m := Money{Cents: -250}
	if m.Abs().Cents != 250 {
		t.Fatalf("Abs failed")
	}
	if m.Neg().Cents != 250 {
		t.Fatalf("Neg failed")
	}
	if (Money{Cents: 100}).Add(Money{Cents: -40}).Cents != 60 {
		t.Fatalf("Add failed")
	}
	if (Money{Cents: 100}).Sub(Money{Cents: 150}).Cents != -50 {
		t.Fatalf("Sub failed")
	}
}
