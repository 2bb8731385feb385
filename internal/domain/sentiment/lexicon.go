package sentiment

// score is the polarity (-1..1) and subjectivity (0..1) of one lexicon entry.
type score struct {
	polarity     float64
	subjectivity float64
}

// lexicon holds lower-cased English adjectives and adverbs with their
// sentiment scores. Words not listed carry no sentiment.
var lexicon = map[string]score{
	"amazing":      {0.6, 0.9},
	"awful":        {-1.0, 1.0},
	"bad":          {-0.7, 0.67},
	"beautiful":    {0.85, 1.0},
	"best":         {1.0, 0.3},
	"better":       {0.5, 0.5},
	"brilliant":    {0.9, 1.0},
	"catastrophic": {-0.8, 0.9},
	"corrupt":      {-0.5, 0.5},
	"crisis":       {-0.3, 0.4},
	"cruel":        {-1.0, 1.0},
	"dangerous":    {-0.6, 0.9},
	"delightful":   {1.0, 1.0},
	"disaster":     {-0.7, 0.8},
	"disastrous":   {-0.8, 0.9},
	"disgusting":   {-1.0, 1.0},
	"dishonest":    {-0.6, 0.8},
	"effective":    {0.6, 0.8},
	"excellent":    {1.0, 1.0},
	"fabulous":     {0.4, 0.9},
	"fair":         {0.7, 0.9},
	"fantastic":    {0.4, 0.9},
	"good":         {0.7, 0.6},
	"great":        {0.8, 0.75},
	"happy":        {0.8, 1.0},
	"hate":         {-0.8, 0.9},
	"helpful":      {0.4, 0.5},
	"heroic":       {0.7, 0.9},
	"honest":       {0.6, 0.9},
	"horrible":     {-1.0, 1.0},
	"important":    {0.4, 1.0},
	"incompetent":  {-0.7, 0.9},
	"incredible":   {0.9, 0.9},
	"insane":       {-1.0, 1.0},
	"interesting":  {0.5, 0.5},
	"love":         {0.5, 0.6},
	"lovely":       {0.5, 0.75},
	"mediocre":     {-0.3, 0.6},
	"nice":         {0.6, 1.0},
	"outrageous":   {-0.8, 0.9},
	"pathetic":     {-1.0, 1.0},
	"perfect":      {1.0, 1.0},
	"pleasant":     {0.73, 0.97},
	"poor":         {-0.4, 0.6},
	"positive":     {0.23, 0.55},
	"negative":     {-0.3, 0.4},
	"radical":      {-0.1, 0.7},
	"reckless":     {-0.6, 0.8},
	"ridiculous":   {-0.33, 1.0},
	"sad":          {-0.5, 1.0},
	"scandalous":   {-0.8, 0.9},
	"shameful":     {-0.8, 0.9},
	"shocking":     {-1.0, 1.0},
	"stupid":       {-0.8, 1.0},
	"successful":   {0.75, 0.95},
	"superb":       {1.0, 1.0},
	"terrible":     {-1.0, 1.0},
	"tragic":       {-0.75, 0.75},
	"ugly":         {-0.7, 1.0},
	"unfair":       {-0.5, 0.9},
	"unacceptable": {-0.75, 0.9},
	"unfortunate":  {-0.5, 0.75},
	"wonderful":    {1.0, 1.0},
	"worse":        {-0.4, 0.6},
	"worst":        {-1.0, 1.0},
	"wrong":        {-0.5, 0.9},
}

// intensifiers scale the next sentiment word.
var intensifiers = map[string]float64{
	"very":       1.3,
	"extremely":  1.5,
	"really":     1.3,
	"so":         1.3,
	"incredibly": 1.5,
	"truly":      1.2,
	"totally":    1.3,
	"utterly":    1.5,
	"slightly":   0.5,
	"somewhat":   0.7,
}

// negations invert and dampen the next sentiment word.
var negations = map[string]bool{
	"not":    true,
	"no":     true,
	"never":  true,
	"n't":    true,
	"isn't":  true,
	"wasn't": true,
	"don't":  true,
	"didn't": true,
	"aren't": true,
	"hardly": true,
}

const negationFactor = -0.5
