package verifier_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestVerifierSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "verifier suite")
}
