package interactive_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInteractive(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Interactive Suite")
}
