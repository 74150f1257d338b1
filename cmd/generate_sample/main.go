// Command generate_sample writes a synthetic GEDCOM file with a configurable
// number of generations, useful for exercising the import strategies against
// realistically sized inputs.
// Usage: go run cmd/generate_sample/main.go [-output sample.ged] [-generations 5] [-seed 1]
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/arkivist/heritage/internal/gedcom"
)

var givenNamesMale = []string{
	"James", "William", "Henry", "George", "Thomas", "Edward", "Arthur",
	"Frederick", "Charles", "Albert", "Walter", "Joseph", "Samuel", "Robert",
}

var givenNamesFemale = []string{
	"Mary", "Elizabeth", "Margaret", "Sarah", "Alice", "Emma", "Florence",
	"Edith", "Annie", "Clara", "Martha", "Harriet", "Jane", "Eleanor",
}

var surnames = []string{
	"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Johnson",
	"Davies", "Robinson", "Wright", "Thompson", "Evans", "Walker", "White",
}

var places = []string{
	"London, England", "York, England", "Bristol, England", "Norwich, England",
	"Edinburgh, Scotland", "Glasgow, Scotland", "Dublin, Ireland", "Cardiff, Wales",
}

func main() {
	output := flag.String("output", "./sample.ged", "path of the GEDCOM file to write")
	generations := flag.Int("generations", 5, "number of generations to generate")
	couplesPerGen := flag.Int("couples", 4, "founding couples in the first generation")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible files")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	g := &generator{rng: rng, w: gedcom.NewWriter()}
	individuals, families := g.build(*generations, *couplesPerGen)

	if err := os.WriteFile(*output, []byte(g.w.String()), 0o644); err != nil {
		log.Fatalf("Failed to write sample file: %v", err)
	}

	log.Printf("Wrote %s: %d individuals, %d families across %d generations",
		*output, individuals, families, *generations)
}

type person struct {
	xref    string
	surname string
	sex     string
	born    int
}

type generator struct {
	rng *rand.Rand
	w   *gedcom.Writer

	nextIndi int
	nextFam  int

	// family records are buffered and written after all individuals
	famLines []func(w *gedcom.Writer)
}

func (g *generator) build(generations, couples int) (int, int) {
	g.w.Line(0, gedcom.TagHeader, "")
	g.w.Line(1, string(gedcom.RecordSource), "heritage-sample")
	g.w.Line(1, "GEDC", "")
	g.w.Line(2, "VERS", "5.5.1")
	g.w.Line(1, "CHAR", "UTF-8")

	// Founding generation marries within itself; every later generation is
	// the children of the previous one paired with new spouses.
	current := make([]person, 0, couples*2)
	for i := 0; i < couples; i++ {
		current = append(current,
			g.newPerson("M", 1800+g.rng.Intn(10)),
			g.newPerson("F", 1800+g.rng.Intn(10)))
	}

	totalFams := 0
	for gen := 0; gen < generations; gen++ {
		var next []person
		for i := 0; i+1 < len(current); i += 2 {
			husband, wife := current[i], current[i+1]
			childCount := 1 + g.rng.Intn(4)
			children := make([]person, 0, childCount)
			for c := 0; c < childCount; c++ {
				sex := "M"
				if g.rng.Intn(2) == 0 {
					sex = "F"
				}
				child := g.newPersonWithSurname(sex, husband.surname, husband.born+25+g.rng.Intn(10))
				children = append(children, child)
			}
			g.addFamily(husband, wife, children)
			totalFams++

			// Pair each child with a fresh spouse for the next generation.
			if gen < generations-1 {
				for _, child := range children {
					spouseSex := "F"
					if child.sex == "F" {
						spouseSex = "M"
					}
					spouse := g.newPerson(spouseSex, child.born)
					if child.sex == "M" {
						next = append(next, child, spouse)
					} else {
						next = append(next, spouse, child)
					}
				}
			}
		}
		current = next
	}

	for _, emit := range g.famLines {
		emit(g.w)
	}

	g.w.NoteRecord("N1", "Generated sample data.\nNot a real family.")
	g.w.RecordLine("S1", string(gedcom.RecordSource))
	g.w.Line(1, gedcom.TagTitle, "Synthetic census of nowhere")
	g.w.Line(1, gedcom.TagAuthor, "heritage-sample")

	g.w.Line(0, gedcom.TagTrailer, "")
	return g.nextIndi, totalFams
}

func (g *generator) newPerson(sex string, born int) person {
	return g.newPersonWithSurname(sex, surnames[g.rng.Intn(len(surnames))], born)
}

func (g *generator) newPersonWithSurname(sex, surname string, born int) person {
	g.nextIndi++
	p := person{
		xref:    fmt.Sprintf("I%d", g.nextIndi),
		surname: surname,
		sex:     sex,
		born:    born,
	}

	given := givenNamesMale[g.rng.Intn(len(givenNamesMale))]
	if sex == "F" {
		given = givenNamesFemale[g.rng.Intn(len(givenNamesFemale))]
	}

	g.w.RecordLine(p.xref, string(gedcom.RecordIndividual))
	g.w.Line(1, gedcom.TagName, gedcom.JoinName(given, surname))
	g.w.Line(1, gedcom.TagSex, sex)
	g.w.Line(1, gedcom.TagBirth, "")
	g.w.Line(2, gedcom.TagDate, fmt.Sprintf("%d", born))
	g.w.Line(2, gedcom.TagPlace, places[g.rng.Intn(len(places))])
	if g.rng.Intn(4) == 0 {
		g.w.Line(1, gedcom.TagDeath, "")
		g.w.Line(2, gedcom.TagDate, fmt.Sprintf("ABT %d", born+60+g.rng.Intn(25)))
	}
	return p
}

func (g *generator) addFamily(husband, wife person, children []person) {
	g.nextFam++
	xref := fmt.Sprintf("F%d", g.nextFam)
	married := husband.born + 20 + g.rng.Intn(8)
	place := places[g.rng.Intn(len(places))]

	g.famLines = append(g.famLines, func(w *gedcom.Writer) {
		w.RecordLine(xref, string(gedcom.RecordFamily))
		w.Line(1, gedcom.TagHusband, "@"+husband.xref+"@")
		w.Line(1, gedcom.TagWife, "@"+wife.xref+"@")
		for _, child := range children {
			w.Line(1, gedcom.TagChild, "@"+child.xref+"@")
		}
		w.Line(1, gedcom.TagMarriage, "")
		w.Line(2, gedcom.TagDate, fmt.Sprintf("%d", married))
		w.Line(2, gedcom.TagPlace, place)
	})
}
