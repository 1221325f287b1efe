package cmd

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("mmiosim", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	run := func(args ...string) error {
		root := NewRootCmd()
		root.SetOut(out)
		root.SetErr(GinkgoWriter)
		root.SetArgs(args)

		return root.Execute()
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "mmiosim-cmd")
		Expect(err).ToNot(HaveOccurred())

		out = new(bytes.Buffer)
		os.Unsetenv(EnvDB)
		os.Unsetenv(EnvMonitorPort)
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("should bring up the crystal and print the journal", func() {
		Expect(run("clock", "--source", "xtal")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("LFCLK started from xtal"))
		Expect(out.String()).To(ContainSubstring(
			"(WRITE32, 0x40000518, 0x1)"))
		Expect(out.String()).To(ContainSubstring(
			"(WRITE32, 0x40000008, 0x1)"))
		Expect(out.String()).To(ContainSubstring(
			"(READ32, 0x40000418, 0x10001)"))
	})

	It("should reject an unknown source", func() {
		Expect(run("clock", "--source", "pll")).ToNot(Succeed())
	})

	It("should print a recorded journal", func() {
		db := filepath.Join(dir, "trace")

		Expect(run("clock", "--source", "rc", "--db", db)).To(Succeed())
		recorded := out.String()
		out.Reset()

		Expect(run("journal", "--events", db+".sqlite3")).To(Succeed())

		Expect(recorded).To(ContainSubstring(
			"(WRITE32, 0x40000518, 0x0)"))
		Expect(out.String()).To(ContainSubstring(
			"(WRITE32, 0x40000518, 0x0)"))
		Expect(out.String()).To(ContainSubstring("CLOCK event 1 arg 0"))
	})

	It("should take the database name from the environment", func() {
		db := filepath.Join(dir, "env")
		os.Setenv(EnvDB, db)

		Expect(run("clock")).To(Succeed())

		_, err := os.Stat(db + ".sqlite3")
		Expect(err).ToNot(HaveOccurred())
	})

	It("should fail on a missing journal", func() {
		Expect(run("journal", filepath.Join(dir, "none.sqlite3"))).
			ToNot(Succeed())
	})
})
