// Package analytics computes the dashboard for a class and subject
// selection: the filtered view, the two bar charts, the grade x attendance
// grouping and the quick statistics.
//
// Every function here is pure and works on an immutable *domain.Dataset,
// so concurrent requests can share one snapshot.
//
//	view, err := analytics.DeriveView(dataset, "2025B", "Português")
//	dashboard, err := analytics.NewBuilder(analytics.NewKMeans(), 3, 42).Build(view)
package analytics
