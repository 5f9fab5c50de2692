package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty input.
	if got := Sum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("#go")) != SumString("#go") {
		t.Error("Sum and SumString disagree")
	}
	if SumString("a") == SumString("b") {
		t.Error("distinct inputs share a checksum")
	}
}
