//go:build go1.18

package queue

import "testing"

// FuzzQueue_InsertPop exercises arbitrary insert/pop sequences and checks
// the conservation invariant: every packet offered is eventually either
// popped exactly once or still resident, never both and never neither.
func FuzzQueue_InsertPop(f *testing.F) {
	f.Add(uint8(0), uint64(1), uint64(1))
	f.Add(uint8(5), uint64(10), uint64(20))
	f.Add(uint8(255), uint64(0), uint64(0))

	f.Fuzz(func(t *testing.T, ops uint8, a, p uint64) {
		q := New[*int]("fuzz", 0, Options{})
		offered := 0
		released := 0

		for i := 0; i < int(ops); i++ {
			v := i
			if err := q.Insert(&v, a+uint64(i), p+uint64(i)); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			offered++

			if i%2 == 0 {
				if _, ok, err := q.PopByProcessing(); err != nil {
					t.Fatalf("PopByProcessing: %v", err)
				} else if ok {
					released++
				}
			} else if i%3 == 0 {
				if _, ok, err := q.PopByAdmissionTail(); err != nil {
					t.Fatalf("PopByAdmissionTail: %v", err)
				} else if ok {
					released++
				}
			}
		}

		if released+q.Len() != offered {
			t.Fatalf("released(%d) + Len(%d) != offered(%d)", released, q.Len(), offered)
		}
	})
}
