package docparser

import "testing"

func TestParseParamTag(t *testing.T) {
	d := Parse("/**\n * Does a thing.\n * @param Foo|Bar $x the value\n * @return string\n */")
	if d.Text() != "Does a thing." {
		t.Fatalf("text = %q", d.Text())
	}
	p, ok := d.FindParamTag("x")
	if !ok {
		t.Fatal("expected @param $x tag")
	}
	if p.Type != "Foo|Bar" {
		t.Fatalf("type = %q", p.Type)
	}
	ret, ok := d.ReturnTag()
	if !ok || ret.Type != "string" {
		t.Fatalf("return tag = %+v ok=%v", ret, ok)
	}
}

func TestParseVarTagBothForms(t *testing.T) {
	d := Parse("/** @var $count int running total */")
	v, ok := d.FindVarTag("count")
	if !ok || v.Type != "int" {
		t.Fatalf("got %+v ok=%v", v, ok)
	}

	d2 := Parse("/** @var string */")
	v2, ok := d2.FindVarTag("")
	if !ok || v2.Type != "string" {
		t.Fatalf("got %+v ok=%v", v2, ok)
	}
}

func TestParseMagicPropertyAndMethod(t *testing.T) {
	d := Parse(`/**
 * @property-read int $id
 * @method static create(string $name, int $age)
 */`)
	if len(d.PropertyTags()) != 1 {
		t.Fatalf("expected 1 property tag, got %d", len(d.PropertyTags()))
	}
	pt := d.PropertyTags()[0]
	if pt.TagName != "@property-read" || pt.Name != "$id" || pt.Type != "int" {
		t.Fatalf("got %+v", pt)
	}
	if len(d.MethodTags()) != 1 {
		t.Fatalf("expected 1 method tag, got %d", len(d.MethodTags()))
	}
	mt := d.MethodTags()[0]
	if mt.Name != "create" || mt.Type != "static" || len(mt.Parameters) != 2 {
		t.Fatalf("got %+v", mt)
	}
}

func TestParseMalformedTagIsDropped(t *testing.T) {
	d := Parse("/** @param garbage */")
	if len(d.ParamTags()) != 0 {
		t.Fatalf("expected malformed @param to be dropped, got %+v", d.ParamTags())
	}
}
