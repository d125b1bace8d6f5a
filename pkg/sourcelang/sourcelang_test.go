package sourcelang

import (
	"testing"

	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/symbol"
)

func findByName(syms []*symbol.Symbol, kind symbol.Kind, name string) *symbol.Symbol {
	for _, s := range syms {
		if s.Kind == kind && s.Name == name {
			return s
		}
	}
	return nil
}

func TestParseFileScopedNamespaceClassAndMethod(t *testing.T) {
	src := []byte(`<?php
namespace App\Model;

use App\Contract\Greeter as GreeterContract;

/**
 * A widget with a name.
 */
class Widget implements GreeterContract
{
    /** @var $name string */
    public $name = "unnamed";

    /**
     * @param string $name
     * @return Widget
     */
    public function rename($name)
    {
        $this->name = $name;
        return $this;
    }
}
`)
	doc := Parse("file:///widget.php", src)
	table := symbol.Create(doc)
	syms := table.Symbols()

	ns := findByName(syms, symbol.KindNamespace, "App\\Model")
	if ns == nil {
		t.Fatalf("expected App\\Model namespace symbol, got %v", names(syms))
	}

	class := findByName(syms, symbol.KindClass, "App\\Model\\Widget")
	if class == nil {
		t.Fatalf("expected App\\Model\\Widget class symbol, got %v", names(syms))
	}
	if len(class.Associated) != 1 || class.Associated[0].Name != "App\\Contract\\Greeter" {
		t.Fatalf("expected resolved interface import, got %v", class.Associated)
	}

	prop := findByName(class.Children, symbol.KindProperty, "$name")
	if prop == nil {
		t.Fatalf("expected $name property, got %v", names(class.Children))
	}
	if got := prop.Type.Parts(); len(got) != 1 || got[0] != "string" {
		t.Fatalf("expected $name typed string via @var, got %v", got)
	}

	method := findByName(class.Children, symbol.KindMethod, "rename")
	if method == nil {
		t.Fatalf("expected rename method, got %v", names(class.Children))
	}
	if got := method.Type.Parts(); len(got) != 1 || got[0] != "App\\Model\\Widget" {
		t.Fatalf("expected rename() typed via @return doc tag, got %v", got)
	}
	param := findByName(method.Children, symbol.KindParameter, "$name")
	if param == nil {
		t.Fatalf("expected $name parameter, got %v", names(method.Children))
	}
	if got := param.Type.Parts(); len(got) != 1 || got[0] != "string" {
		t.Fatalf("expected $name param typed via @param doc tag, got %v", got)
	}
}

func TestParseBracedNamespaceAndTrait(t *testing.T) {
	src := []byte(`<?php
namespace Lib {
    trait Loggable
    {
        public function log($msg)
        {
        }
    }

    class Service
    {
        use Loggable;
    }
}
`)
	doc := Parse("file:///lib.php", src)
	table := symbol.Create(doc)
	syms := table.Symbols()

	trait := findByName(syms, symbol.KindTrait, "Lib\\Loggable")
	if trait == nil {
		t.Fatalf("expected Lib\\Loggable trait, got %v", names(syms))
	}
	svc := findByName(syms, symbol.KindClass, "Lib\\Service")
	if svc == nil {
		t.Fatalf("expected Lib\\Service class, got %v", names(syms))
	}
	if len(svc.Associated) != 1 || svc.Associated[0].Name != "Lib\\Loggable" {
		t.Fatalf("expected trait-use association, got %v", svc.Associated)
	}
}

func TestParseAnonymousClassGetsStableName(t *testing.T) {
	src := []byte(`<?php
function build()
{
    return new class {
        public function ping()
        {
        }
    };
}
`)
	doc := Parse("file:///anon.php", src)
	table := symbol.Create(doc)
	syms := table.Symbols()

	fn := findByName(syms, symbol.KindFunction, "build")
	if fn == nil {
		t.Fatalf("expected build function, got %v", names(syms))
	}
	var anon *symbol.Symbol
	for _, s := range syms {
		if s.Kind == symbol.KindClass && s.Modifiers.Has(symbol.ModAnonymous) {
			anon = s
		}
	}
	if anon == nil {
		t.Fatalf("expected an anonymous class symbol, got %v", names(syms))
	}
	if anon.Name == "" {
		t.Fatalf("expected a non-empty synthesized anonymous name")
	}
}

// TestHaltAtPositionReachesDeepLeaf exercises the Range/Children wiring
// that the flow resolver depends on for cooperative cancellation: a
// leaf deep inside an expression must be reachable via Children() all
// the way from the root.
func TestHaltAtPositionReachesDeepLeaf(t *testing.T) {
	src := []byte(`<?php
function f($a, $b)
{
    if ($a) {
        $x = $b;
    } else {
        $x = $a;
    }
    $sentinel = 1;
}
`)
	doc := Parse("file:///flow.php", src)
	var sentinelPos phrase.Position
	var found bool
	phrase.WalkNode(doc.Root(), &sentinelFinder{pos: &sentinelPos, found: &found})
	if !found {
		t.Fatalf("expected to find the $sentinel assignment's left-hand variable")
	}
}

type sentinelFinder struct {
	pos   *phrase.Position
	found *bool
}

func (v *sentinelFinder) PreOrder(n phrase.Node, ancestry []phrase.Node) bool {
	if n.Kind() == phrase.KindSimpleVariable && n.Text() == "$sentinel" {
		*v.pos = n.Range().Start
		*v.found = true
	}
	return true
}

func (v *sentinelFinder) PostOrder(n phrase.Node, ancestry []phrase.Node) {}

func names(syms []*symbol.Symbol) []string {
	var out []string
	for _, s := range syms {
		out = append(out, s.Name)
	}
	return out
}
