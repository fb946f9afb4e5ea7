package nova

import (
	"reflect"
	"testing"
)

func TestEnvironmentScopes(t *testing.T) {
	globals := NewEnvironment()
	globals.Define("x", NumberValue{Val: 1})
	child := globals.GetChild()

	if value, ok := child.Get("x"); !ok || !value.Equals(NumberValue{Val: 1}) {
		t.Fatalf("child should see parent bindings, got %v %v", value, ok)
	}
	if child.Parent() != globals || globals.Parent() != nil {
		t.Fatal("unexpected parent links")
	}

	child.Define("x", StringValue{Val: "shadow"})
	if value, _ := globals.Get("x"); !value.Equals(NumberValue{Val: 1}) {
		t.Errorf("define in child leaked into parent: %v", value)
	}

	grandchild := child.GetChild()
	if !grandchild.Assign("x", StringValue{Val: "updated"}) {
		t.Fatal("assign should find the nearest binding")
	}
	if value, _ := child.Get("x"); !value.Equals(StringValue{Val: "updated"}) {
		t.Errorf("assign should update the nearest frame, got %v", value)
	}
	if value, _ := globals.Get("x"); !value.Equals(NumberValue{Val: 1}) {
		t.Errorf("assign should not touch shadowed bindings, got %v", value)
	}

	if grandchild.Assign("missing", UndefinedValue{}) {
		t.Error("assign to an undeclared name should fail")
	}
	if _, ok := grandchild.Get("missing"); ok {
		t.Error("failed assign should not create a binding")
	}
}

func TestEnvironmentNames(t *testing.T) {
	frame := NewEnvironment()
	frame.Define("b", UndefinedValue{})
	frame.Define("a", UndefinedValue{})
	frame.GetChild().Define("c", UndefinedValue{})
	if got := frame.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v", got)
	}
}

func TestEnvironmentCallDepthShared(t *testing.T) {
	globals := NewEnvironment()
	child := globals.GetChild().GetChild()
	*child.depth++
	if *globals.depth != 1 {
		t.Errorf("call depth should be shared down the chain, got %v", *globals.depth)
	}
	if *NewEnvironment().depth != 0 {
		t.Error("a new root should start at depth zero")
	}
}
