package metric

// Collection is an insertion-ordered mapping from metric name to Result.
// Built once per (generated, canonical) pair and read-only afterwards;
// the key set is a stable contract consumed by downstream reporting.
type Collection struct {
	order   []string
	results map[string]Result
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{results: make(map[string]Result)}
}

// Add stores a result under its name. Re-adding a name overwrites the
// value but keeps the original position.
func (c *Collection) Add(r Result) {
	if _, exists := c.results[r.Name]; !exists {
		c.order = append(c.order, r.Name)
	}
	c.results[r.Name] = r
}

// Get returns the result for a metric name.
func (c *Collection) Get(name string) (Result, bool) {
	r, ok := c.results[name]
	return r, ok
}

// Value returns the scalar value for a metric name, or 0 if absent.
func (c *Collection) Value(name string) float64 {
	return c.results[name].Value
}

// Has reports whether a metric name is present.
func (c *Collection) Has(name string) bool {
	_, ok := c.results[name]
	return ok
}

// Names returns the metric names in insertion order.
func (c *Collection) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of metrics in the collection.
func (c *Collection) Len() int {
	return len(c.order)
}

// Summarize projects the collection down to a plain name -> value mapping,
// discarding metadata.
func (c *Collection) Summarize() map[string]float64 {
	out := make(map[string]float64, len(c.results))
	for name, r := range c.results {
		out[name] = r.Value
	}
	return out
}
