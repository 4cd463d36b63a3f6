package model

import "time"

// User is the presence record for a partition. Its ID is the identity
// derived from the API key; the key itself is never stored.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	CreationTime time.Time `json:"creationTime"`
}

// Settings holds a user's daily goals and resting energy.
type Settings struct {
	CalorieGoal   int       `json:"calorieGoal"`
	ProteinGoal   float64   `json:"proteinGoal"`
	CarbGoal      float64   `json:"carbGoal"`
	FatGoal       *float64  `json:"fatGoal,omitempty"`
	RestingEnergy int       `json:"restingEnergy"`
	UpdateTime    time.Time `json:"updateTime"`
}

// FoodEntry is a single food item logged on one day. ID is unique within
// that day's log.
type FoodEntry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Calories    int       `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	LoggedAt    time.Time `json:"loggedAt"`
}

// DayLog is one user's ordered food entries for one calendar date.
// Date uses the ISO YYYY-MM-DD form.
type DayLog struct {
	Date       string      `json:"date"`
	Entries    []FoodEntry `json:"entries"`
	UpdateTime time.Time   `json:"updateTime"`
}

// CacheItem is a reusable food definition, keyed per user by normalized name.
type CacheItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Calories    int       `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	UseCount    int       `json:"useCount"`
	LastUsed    time.Time `json:"lastUsed"`
}

// DailySummary compares a day's totals against the user's goals.
// Remaining values go negative when a goal is exceeded.
type DailySummary struct {
	TotalCalories     int      `json:"totalCalories"`
	TotalProtein      float64  `json:"totalProtein"`
	TotalCarbs        float64  `json:"totalCarbs"`
	TotalFat          float64  `json:"totalFat"`
	CaloriesRemaining int      `json:"caloriesRemaining"`
	ProteinRemaining  float64  `json:"proteinRemaining"`
	CarbsRemaining    float64  `json:"carbsRemaining"`
	FatRemaining      *float64 `json:"fatRemaining,omitempty"`
}

// DaySummary is one day's totals inside a weekly report.
type DaySummary struct {
	Date          string  `json:"date"`
	TotalCalories int     `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFat      float64 `json:"totalFat"`
	EntryCount    int     `json:"entryCount"`
}

// WeeklyReport covers the 7 calendar days ending at WeekEnd. FatAdded is
// signed: total calories minus a full week of resting burn, negative on a
// deficit.
type WeeklyReport struct {
	WeekStart        string       `json:"weekStart"`
	WeekEnd          string       `json:"weekEnd"`
	DailySummaries   []DaySummary `json:"dailySummaries"`
	TotalCalories    int          `json:"totalCalories"`
	AvgDailyCalories float64      `json:"avgDailyCalories"`
	TotalProtein     float64      `json:"totalProtein"`
	TotalCarbs       float64      `json:"totalCarbs"`
	TotalFat         float64      `json:"totalFat"`
	FatAdded         int          `json:"fatAdded"`
	DaysLogged       int          `json:"daysLogged"`
}
