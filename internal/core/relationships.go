package core

// Relationships lists the suggested relationship labels. Free text outside
// the list is accepted as well.
var Relationships = []string{
	"Son", "Daughter", "Husband", "Wife", "Partner",
	"Grandson", "Granddaughter", "Great-Grandson", "Great-Granddaughter",
	"Mother", "Father", "Grandmother", "Grandfather",
	"Sister", "Brother", "Twin Sister", "Twin Brother",
	"Aunt", "Uncle", "Great-Aunt", "Great-Uncle",
	"Cousin", "First Cousin", "Second Cousin",
	"Mother-in-Law", "Father-in-Law", "Sister-in-Law", "Brother-in-Law",
	"Daughter-in-Law", "Son-in-Law",
	"Niece", "Nephew", "Great-Niece", "Great-Nephew",
	"Stepmother", "Stepfather", "Stepdaughter", "Stepson",
	"Stepsister", "Stepbrother",
	"Godmother", "Godfather", "Goddaughter", "Godson",
	"Best Friend", "Close Friend", "Friend", "Family Friend",
	"Neighbor", "Colleague", "Coworker", "Boss",
	"Former Colleague", "Childhood Friend", "School Friend",
	"Church Friend", "Club Member", "Volunteer Friend",
	"Other",
}
