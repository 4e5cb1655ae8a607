// Package bloom provides probabilistic URL deduplication for crawls.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter remembers which entry URLs a crawl has already seen. It trades a
// small false positive rate for constant memory, which matters when a full
// encyclopedia walk pushes tens of thousands of URLs: a false positive
// drops one entry, a false negative cannot happen.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter sizes a filter for n expected URLs at the given false positive
// rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a URL.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test reports whether the URL may have been added before. False positives
// are possible; false negatives are not.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount approximates the number of URLs added so far.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
