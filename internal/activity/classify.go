package activity

import "github.com/jtammen/stride/internal/errors"

// Classification is the resolved (category, display name) pair for a type label.
type Classification struct {
	Category Category
	Exercise string
}

// Classify resolves a raw type label against the taxonomy table.
// Lookup is a case-sensitive exact match. An unmapped label returns
// UNKNOWN_ACTIVITY_TYPE carrying the label; it is never guessed into a
// category, so gaps surface as a one-line table fix instead of
// miscategorized data.
func Classify(typeLabel string) (Classification, error) {
	c, ok := taxonomy[typeLabel]
	if !ok {
		return Classification{}, errors.NewUnknownActivityType(typeLabel)
	}
	return c, nil
}

// KnownLabels returns every label the taxonomy table covers.
func KnownLabels() []string {
	labels := make([]string, 0, len(taxonomy))
	for label := range taxonomy {
		labels = append(labels, label)
	}
	return labels
}

// taxonomy maps the remote source's type labels to a category and display
// name. The source taxonomy grows over time and older labels are never
// reused, so legacy labels (e.g. "indoor_walk", the "_ws" GPX variants)
// stay in the table resolving to the same classification as their modern
// replacements. Adding a new label is a one-line change here.
var taxonomy = map[string]Classification{
	// Cardio, running
	"running":              {Cardio, "Running"},
	"street_running":       {Cardio, "Street Running"},
	"track_running":        {Cardio, "Track Running"},
	"trail_running":        {Cardio, "Trail Running"},
	"treadmill_running":    {Cardio, "Treadmill Running"},
	"indoor_running":       {Cardio, "Indoor Running"},
	"indoor_track":         {Cardio, "Indoor Track"},
	"ultra_run":            {Cardio, "Ultra Running"},
	"obstacle_run":         {Cardio, "Obstacle Course"},
	"virtual_run":          {Cardio, "Virtual Running"},
	"wheelchair_push_run":  {Cardio, "Wheelchair Running"},

	// Cardio, walking
	"walking":                   {Cardio, "Walking"},
	"casual_walking":            {Cardio, "Walking"},
	"speed_walking":             {Cardio, "Speed Walking"},
	"indoor_walking":            {Cardio, "Indoor Walking"},
	"indoor_walk":               {Cardio, "Indoor Walking"}, // legacy
	"step_tracking_and_walking": {Cardio, "Walking"},
	"steps":                     {Cardio, "Walking"},
	"rucking":                   {Cardio, "Rucking"},
	"wheelchair_push_walk":      {Cardio, "Wheelchair Walking"},

	// Cycling
	"cycling":                {Cycling, "Cycling"},
	"road_biking":            {Cycling, "Road Cycling"},
	"mountain_biking":        {Cycling, "Mountain Biking"},
	"gravel_cycling":         {Cycling, "Gravel Cycling"},
	"indoor_cycling":         {Cycling, "Indoor Cycling"},
	"indoor_bike":            {Cycling, "Indoor Cycling"}, // legacy
	"track_cycling":          {Cycling, "Track Cycling"},
	"cyclocross":             {Cycling, "Cyclocross"},
	"recumbent_cycling":      {Cycling, "Recumbent Cycling"},
	"downhill_biking":        {Cycling, "Downhill MTB"},
	"enduro_mtb":             {Cycling, "Enduro MTB"},
	"bmx":                    {Cycling, "BMX"},
	"hand_cycling":           {Cycling, "Handcycling"},
	"indoor_hand_cycling":    {Cycling, "Indoor Handcycling"},
	"virtual_ride":           {Cycling, "Virtual Cycling"},
	"e_bike_fitness":         {Cycling, "E-Bike"},
	"e_bike_mountain":        {Cycling, "E-Mountain Bike"},
	"e_enduro_mtb":           {Cycling, "E-Enduro MTB"},
	"unbound_gravel_cycling": {Cycling, "Gravel Cycling"},

	// Strength and gym
	"strength_training": {Strength, "Strength Training"},
	"fitness_equipment": {Strength, "Gym"},
	"cardio_training":   {Strength, "Cardio Training"},
	"indoor_cardio":     {Strength, "Cardio"},
	"elliptical":        {Strength, "Elliptical"},
	"stair_climbing":    {Strength, "Stair Climber"},
	"indoor_rowing":     {Strength, "Rowing Machine"},
	"floor_climbing":    {Strength, "Floor Climbing"},
	"jump_rope":         {Strength, "Jump Rope"},
	"hiit":              {Strength, "HIIT"},
	"yoga":              {Strength, "Yoga"},
	"pilates":           {Strength, "Pilates"},
	"meditation":        {Strength, "Meditation"},
	"breathwork":        {Strength, "Breathwork"},
	"mobility":          {Strength, "Mobility"},
	"boxing":            {Strength, "Boxing"},
	"mixed_martial_arts": {Strength, "MMA"},
	"toe_to_toe":         {Strength, "Toe-to-Toe"},
	"toe_to_toe_no_tm":   {Strength, "Toe-to-Toe"}, // legacy
	"dance":              {Strength, "Dance"},
	"multi_sport":        {Strength, "Multisport"},
	"triathlon":          {Strength, "Triathlon"},
	"transition":         {Strength, "Transition"},
	"para_sports":        {Strength, "Para Sports"},
	"wheelchair_pushes":  {Strength, "Wheelchair"},
	"pushes":             {Strength, "Wheelchair"},
	"other":              {Strength, "Other"},
	"uncategorized":      {Strength, "Other"},

	// Team sports
	"soccer":            {TeamSports, "Football"},
	"soccer_football":   {TeamSports, "Football"},
	"football":          {TeamSports, "Football"},
	"american_football": {TeamSports, "American Football"},
	"rugby":             {TeamSports, "Rugby"},
	"field_hockey":      {TeamSports, "Field Hockey"},
	"lacrosse":          {TeamSports, "Lacrosse"},
	"ultimate_disc":     {TeamSports, "Ultimate Disc"},
	"team_sports":       {TeamSports, "Team Sports"},
	"volleyball":        {TeamSports, "Volleyball"},
	"basketball":        {TeamSports, "Basketball"},
	"baseball":          {TeamSports, "Baseball"},
	"softball":          {TeamSports, "Softball"},
	"ice_hockey":        {TeamSports, "Ice Hockey"},
	"cricket":           {TeamSports, "Cricket"},
	"tennis":            {TeamSports, "Tennis"},
	"table_tennis":      {TeamSports, "Table Tennis"},
	"badminton":         {TeamSports, "Badminton"},
	"squash":            {TeamSports, "Squash"},
	"racquetball":       {TeamSports, "Racquetball"},
	"paddelball":        {TeamSports, "Padel"},
	"platform_tennis":   {TeamSports, "Platform Tennis"},
	"pickleball":        {TeamSports, "Pickleball"},
	"racket_sports":     {TeamSports, "Racket Sports"},
	"racquet_sports":    {TeamSports, "Racket Sports"}, // legacy
	"disc_golf":         {TeamSports, "Disc Golf"},

	// Water sports
	"surfing":                      {WaterSports, "Surfing"},
	"surfing_v2":                   {WaterSports, "Surfing"}, // legacy
	"stand_up_paddleboarding":      {WaterSports, "SUP"},
	"kiteboarding":                 {WaterSports, "Kiteboarding"},
	"wind_kite_surfing":            {WaterSports, "Windsurfing"},
	"windsurfing":                  {WaterSports, "Windsurfing"},
	"wakeboarding":                 {WaterSports, "Wakeboarding"},
	"wakesurfing":                  {WaterSports, "Wakesurfing"},
	"waterskiing":                  {WaterSports, "Waterskiing"},
	"water_tubing":                 {WaterSports, "Tubing"},
	"whitewater_rafting":           {WaterSports, "Whitewater Rafting"},
	"whitewater_rafting_kayaking":  {WaterSports, "Whitewater Kayaking"},
	"kayaking":                     {WaterSports, "Kayaking"},
	"paddling":                     {WaterSports, "Canoeing"},
	"paddle_sports":                {WaterSports, "Paddling"},
	"sailing":                      {WaterSports, "Sailing"},
	"boating":                      {WaterSports, "Boating"},
	"water_sports":                 {WaterSports, "Water Sports"},
	"rowing":                       {WaterSports, "Rowing"},
	"swimming":                     {WaterSports, "Swimming"},
	"lap_swimming":                 {WaterSports, "Pool Swimming"},
	"pool_swimming":                {WaterSports, "Pool Swimming"},
	"open_water_swimming":          {WaterSports, "Open Water Swimming"},
	"pool_apnea":                   {WaterSports, "Pool Apnea"},
	"snorkeling":                   {WaterSports, "Snorkeling"},
	"diving":                       {WaterSports, "Diving"},
	"single_gas_diving":            {WaterSports, "Diving"},
	"multi_gas_diving":             {WaterSports, "Diving"},
	"gauge_diving":                 {WaterSports, "Diving"},
	"apnea_diving":                 {WaterSports, "Apnea Diving"},
	"apnea_hunting":                {WaterSports, "Apnea Hunting"},
	"ccr_diving":                   {WaterSports, "CCR Diving"},
	"offshore_grinding":            {WaterSports, "Offshore Grinding"},
	"onshore_grinding":             {WaterSports, "Onshore Grinding"},

	// Hiking and outdoors
	"hiking":           {Hiking, "Hiking"},
	"mountaineering":   {Hiking, "Mountaineering"},
	"hunting":          {Hiking, "Hunting"},
	"hunting_fishing":  {Hiking, "Hunting & Fishing"},
	"fishing":          {Hiking, "Fishing"},
	"horseback_riding": {Hiking, "Horseback Riding"},
	"overland":         {Hiking, "Overland"},
	"snow_shoe":        {Hiking, "Snowshoeing"},
	"golf":             {Hiking, "Golf"},

	// Climbing
	"bouldering":      {Climbing, "Bouldering"},
	"rock_climbing":   {Climbing, "Rock Climbing"},
	"indoor_climbing": {Climbing, "Indoor Climbing"},

	// Winter sports
	"winter_sport":                     {WinterSports, "Winter Sports"},
	"resort_skiing":                    {WinterSports, "Skiing"},
	"resort_skiing_snowboarding":       {WinterSports, "Skiing"},
	"resort_skiing_snowboarding_ws":    {WinterSports, "Skiing"}, // legacy GPX variant
	"resort_snowboarding":              {WinterSports, "Snowboarding"},
	"snowboarding":                     {WinterSports, "Snowboarding"},
	"snow_skiing":                      {WinterSports, "Skiing"},
	"cross_country_skiing":             {WinterSports, "Cross-Country Skiing"},
	"skate_skiing":                     {WinterSports, "Skate Skiing"},
	"skate_skiing_ws":                  {WinterSports, "Skate Skiing"}, // legacy GPX variant
	"backcountry_skiing":               {WinterSports, "Backcountry Skiing"},
	"backcountry_skiing_ws":            {WinterSports, "Backcountry Skiing"}, // legacy GPX variant
	"backcountry_skiing_snowboarding":  {WinterSports, "Backcountry Skiing"},
	"backcountry_snowboarding":         {WinterSports, "Backcountry Snowboarding"},
	"skating":                          {WinterSports, "Skating"},
	"inline_skating":                   {WinterSports, "Inline Skating"},
	"snowmobiling":                     {WinterSports, "Snowmobiling"},
}
