package elaborate_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestElaborateSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Elaborate Suite")
}
