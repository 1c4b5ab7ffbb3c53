package idtable

import (
	"reflect"
	"testing"
)

func TestSetGetDel(t *testing.T) {
	tb := New[string]()
	tb.Set(1, "a")
	tb.Set(2, "b")

	if v, ok := tb.Get(1); !ok || v != "a" {
		t.Fatalf("Get(1) = %q, %v", v, ok)
	}
	if tb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tb.Len())
	}

	tb.Del(1)
	if _, ok := tb.Get(1); ok {
		t.Fatal("Get(1) ok after Del")
	}
	if tb.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tb.Len())
	}
}

func TestDelUnknownIsNoop(t *testing.T) {
	tb := New[int]()
	tb.Del(42) // must not panic
	if tb.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tb.Len())
	}
}

func TestIdsSortedAndEachOrder(t *testing.T) {
	tb := New[int]()
	tb.Set(5, 50)
	tb.Set(1, 10)
	tb.Set(3, 30)

	if got := tb.Ids(); !reflect.DeepEqual(got, []int{1, 3, 5}) {
		t.Fatalf("Ids() = %v, want [1 3 5]", got)
	}

	var order []int
	tb.Each(func(id int, value int) {
		order = append(order, id)
	})
	if !reflect.DeepEqual(order, []int{1, 3, 5}) {
		t.Fatalf("Each order = %v, want [1 3 5]", order)
	}
}
