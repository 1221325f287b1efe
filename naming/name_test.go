package naming

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse a hierarchical name", func() {
		n, err := Parse("Board.RTC[1].CC[0][2]")

		Expect(err).ToNot(HaveOccurred())
		Expect(n.Tokens).To(Equal([]Token{
			{Elem: "Board"},
			{Elem: "RTC", Index: []int{1}},
			{Elem: "CC", Index: []int{0, 2}},
		}))
		Expect(n.String()).To(Equal("Board.RTC[1].CC[0][2]"))
	})

	DescribeTable("invalid names",
		func(name string) {
			_, err := Parse(name)

			Expect(err).To(MatchError(ErrInvalidName))
			Expect(func() { MustBeValid(name) }).To(Panic())
		},
		Entry("empty", ""),
		Entry("trailing dot", "Board.CLOCK."),
		Entry("empty element", "Board..CLOCK"),
		Entry("lower case", "Board.clock"),
		Entry("underscore", "Board.LF_CLK"),
		Entry("unclosed bracket", "RTC[1"),
		Entry("stray bracket", "RTC1]"),
		Entry("text after index", "RTC[1]A"),
		Entry("non-integer index", "RTC[a]"),
	)

	It("should build names", func() {
		Expect(Build("", "CLOCK")).To(Equal("CLOCK"))
		Expect(Build("Board", "CLOCK")).To(Equal("Board.CLOCK"))
		Expect(BuildWithIndex("Board", "RTC", 1)).To(Equal("Board.RTC[1]"))
	})
})
