package graph

import (
	"fmt"
	"testing"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
)

// BenchmarkAppendOperation_Linear benchmarks building a long chain of
// single-need/single-provide operations a1->a2->...->aN.
func BenchmarkAppendOperation_Linear(b *testing.B) {
	sizes := []int{10, 100, 1000, 10000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%d_ops", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				n := New()
				for j := 0; j < size; j++ {
					name := fmt.Sprintf("op%d", j)
					need := fmt.Sprintf("d%d", j)
					provide := fmt.Sprintf("d%d", j+1)
					o := op.MustNew(name, []dep.Dep{dep.Plain(need)}, []dep.Dep{dep.Plain(provide)})
					if err := n.AppendOperation(o); err != nil {
						b.Fatalf("append: %v", err)
					}
				}
			}
		})
	}
}

// BenchmarkRequirements_Linear benchmarks aggregate requirement
// collection over a long chain.
func BenchmarkRequirements_Linear(b *testing.B) {
	n := New()
	for j := 0; j < 1000; j++ {
		name := fmt.Sprintf("op%d", j)
		need := fmt.Sprintf("d%d", j)
		provide := fmt.Sprintf("d%d", j+1)
		o := op.MustNew(name, []dep.Dep{dep.Plain(need)}, []dep.Dep{dep.Plain(provide)})
		if err := n.AppendOperation(o); err != nil {
			b.Fatalf("append: %v", err)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.Requirements()
	}
}
